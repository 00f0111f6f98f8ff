package nats

import (
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/pkg/logger"
)

// Client is the push-channel adapter. Each room maps to one NATS subject;
// subscriptions are handed back to the caller, which owns their lifecycle.
type Client struct {
	Conn *nats.Conn
	log  logger.Logger
}

func NewClient(url string, log logger.Logger) (*Client, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Client{Conn: conn, log: log.WithModule("nats")}, nil
}

func (c *Client) Close() {
	c.Conn.Close()
}

func roomSubject(roomID string) string {
	return fmt.Sprintf("chat.room.%s", roomID)
}
