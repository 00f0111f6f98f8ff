package nats

import (
	"encoding/json"
	"fmt"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/domain"
)

// Publish delivers the message to every live subscriber of the room's subject.
func (c *Client) Publish(roomID string, msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	return c.Conn.Publish(roomSubject(roomID), data)
}
