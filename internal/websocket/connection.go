package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/pkg/logger"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/service"
)

// Connection represents a single client session. It carries the user's sync
// engine and doubles as the engine's notifier: re-render requests are queued
// on the send channel and written out by the write pump.
type Connection struct {
	Ws     *websocket.Conn
	Send   chan Event
	Hub    *Hub
	Engine *service.SyncService
	Logger logger.Logger

	// mu and closed fence enqueue against close(Send): a push callback can
	// still be in flight when the session shuts down, since unsubscribing
	// does not wait for a running handler to return.
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// RoomChanged implements the engine's notifier contract.
func (c *Connection) RoomChanged(roomID string) {
	c.enqueue(Event{Type: EventRoomChanged, RoomID: roomID})
}

// BadgeChanged implements the engine's notifier contract.
func (c *Connection) BadgeChanged(count int) {
	c.enqueue(Event{Type: EventBadgeChanged, Count: count})
}

// enqueue never blocks: a client that cannot keep up loses notifications, not
// the session. The reconciler re-derives anything a dropped event carried.
// After close it is a no-op; the select alone cannot protect the send, a
// closed channel is always ready.
func (c *Connection) enqueue(evt Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- evt:
	default:
		c.Logger.Warnf("notification dropped for slow client")
	}
}

// ReadPump decodes user intents and dispatches them to the engine.
func (c *Connection) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.Unregister <- c
	}()

	for {
		var intent Intent
		if err := c.Ws.ReadJSON(&intent); err != nil {
			c.Logger.Infof("connection closed: %v", err)
			return
		}
		c.dispatch(ctx, intent)
	}
}

func (c *Connection) dispatch(ctx context.Context, intent Intent) {
	switch intent.Type {
	case IntentSelectRoom:
		if err := c.Engine.SelectRoom(intent.RoomID); err != nil {
			c.fail(err)
			return
		}
		c.sendRoomMessages(intent.RoomID)
	case IntentCloseSlot:
		c.Engine.CloseSlot(intent.Slot)
	case IntentSendMessage:
		if _, err := c.Engine.SendMessage(ctx, intent.RoomID, intent.Text); err != nil {
			c.fail(err)
		}
	case IntentOpenDirect:
		roomID, err := c.Engine.OpenDirectRoom(ctx, intent.Other)
		if err != nil {
			c.fail(err)
			return
		}
		c.sendRoomMessages(roomID)
	case IntentClearHistory:
		if err := c.Engine.ClearHistory(ctx, intent.RoomID); err != nil {
			c.fail(err)
		}
	case IntentListRooms:
		c.enqueue(Event{Type: EventRoomList, Rooms: c.Engine.Rooms()})
	default:
		c.enqueue(Event{Type: EventError, Error: "unknown intent type"})
	}
}

func (c *Connection) sendRoomMessages(roomID string) {
	if room, ok := c.Engine.Room(roomID); ok {
		c.enqueue(Event{Type: EventMessages, RoomID: roomID, Messages: room.Messages})
	}
}

func (c *Connection) fail(err error) {
	c.enqueue(Event{Type: EventError, Error: err.Error()})
}

// WritePump drains the send channel onto the socket.
func (c *Connection) WritePump() {
	defer c.Ws.Close()

	for evt := range c.Send {
		if err := c.Ws.WriteJSON(evt); err != nil {
			c.Logger.Infof("write failed: %v", err)
			return
		}
	}
}

func (c *Connection) shutdown() {
	c.closeOnce.Do(func() {
		c.Engine.Stop()
		c.closeSend()
		c.Ws.Close()
	})
}

// closeSend closes the send channel under the enqueue fence, so no
// notification can race the close.
func (c *Connection) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	close(c.Send)
}
