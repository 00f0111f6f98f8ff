package websocket

import "github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/domain"

// EventType enumerates engine-to-client notifications. The engine never
// renders; it only tells the client which parts of its view are stale.
type EventType string

const (
	EventRoomChanged  EventType = "room_changed"
	EventBadgeChanged EventType = "badge_changed"
	EventRoomList     EventType = "room_list"
	EventMessages     EventType = "messages"
	EventError        EventType = "error"
)

type Event struct {
	Type     EventType        `json:"type"`
	RoomID   string           `json:"room_id,omitempty"`
	Count    int              `json:"count,omitempty"`
	Rooms    []domain.Room    `json:"rooms,omitempty"`
	Messages []domain.Message `json:"messages,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// IntentType enumerates client-to-engine user intents.
type IntentType string

const (
	IntentSelectRoom   IntentType = "select_room"
	IntentCloseSlot    IntentType = "close_slot"
	IntentSendMessage  IntentType = "send_message"
	IntentOpenDirect   IntentType = "open_direct"
	IntentClearHistory IntentType = "clear_history"
	IntentListRooms    IntentType = "list_rooms"
)

type Intent struct {
	Type   IntentType  `json:"type"`
	RoomID string      `json:"room_id,omitempty"`
	Slot   int         `json:"slot,omitempty"`
	Text   string      `json:"text,omitempty"`
	Other  domain.User `json:"other,omitempty"`
}
