package port

import (
	"context"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/domain"
)

// MessageStore is the authoritative store collaborator. It owns durable room
// and message persistence; the engine only consumes this contract.
type MessageStore interface {
	FetchRooms(ctx context.Context) ([]domain.Room, error)
	SaveRoom(ctx context.Context, room domain.Room) error
	FetchMessages(ctx context.Context, roomID string) ([]domain.Message, error)
	AppendMessage(ctx context.Context, msg domain.Message) error
	ClearMessages(ctx context.Context, roomID string) error
}

// PushHandle is one live push subscription. At most one exists per room id.
type PushHandle interface {
	Unsubscribe() error
}

// PushBus is the server-push notification channel.
type PushBus interface {
	Subscribe(roomID string, handler func(domain.Message)) (PushHandle, error)
	Publish(roomID string, msg domain.Message) error
}

// Notifier is the UI/rendering collaborator. The engine emits re-render
// requests through it and never renders anything itself.
type Notifier interface {
	RoomChanged(roomID string)
	BadgeChanged(count int)
}
