package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/domain"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/port"
)

// Subscribe opens a push subscription for one room. The caller keeps the
// returned handle; enforcing at most one live handle per room is the
// subscription manager's job, not this adapter's.
func (c *Client) Subscribe(roomID string, handler func(domain.Message)) (port.PushHandle, error) {
	sub, err := c.Conn.Subscribe(roomSubject(roomID), func(msg *nats.Msg) {
		var chatMsg domain.Message
		if err := json.Unmarshal(msg.Data, &chatMsg); err != nil {
			c.log.Warnf("dropping undecodable push payload on %s: %v", msg.Subject, err)
			return
		}
		handler(chatMsg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to room %s: %w", roomID, err)
	}
	return &subscription{sub: sub}, nil
}

type subscription struct {
	sub *nats.Subscription
}

func (s *subscription) Unsubscribe() error {
	if err := s.sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}
