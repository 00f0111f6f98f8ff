package websocket

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/pkg/logger"
)

func newTestConnection() *Connection {
	return &Connection{
		Send:   make(chan Event, 4),
		Logger: logger.NewLogger("error", ""),
	}
}

func TestNotifyAfterCloseIsDropped(t *testing.T) {
	c := newTestConnection()
	c.closeSend()

	// A push callback can still fire after the session closed its send
	// channel; the notification must be dropped, not panic the process.
	assert.NotPanics(t, func() {
		c.RoomChanged("r1")
		c.BadgeChanged(3)
	})
}

func TestNotifyRacingCloseIsSafe(t *testing.T) {
	c := newTestConnection()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RoomChanged("r1")
			}
		}()
	}
	assert.NotPanics(t, func() { c.closeSend() })
	wg.Wait()
}

func TestEnqueueDropsWhenClientIsSlow(t *testing.T) {
	c := &Connection{
		Send:   make(chan Event, 1),
		Logger: logger.NewLogger("error", ""),
	}

	c.RoomChanged("r1")
	c.RoomChanged("r2") // buffer full: dropped, not blocked

	evt := <-c.Send
	assert.Equal(t, "r1", evt.RoomID)
	select {
	case extra := <-c.Send:
		t.Fatalf("expected overflow event to be dropped, got %v", extra)
	default:
	}
}
