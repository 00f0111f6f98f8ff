package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/domain"
)

const (
	roomIndexKey  = "chat:rooms"
	roomKeyPrefix = "chat:room:"
	msgKeyPrefix  = "chat:messages:"
)

// Client backs the authoritative message store with Redis. Room metadata
// lives in JSON values indexed by a room-id set; each room's message sequence
// is a JSON list appended in send order. historyLimit caps how much of the
// tail a fetch returns.
type Client struct {
	client       *redis.Client
	historyLimit int64
}

func NewClient(redisURL string, historyLimit int) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client, historyLimit: int64(historyLimit)}, nil
}

// FetchRooms loads every room's metadata. Message sequences are not included;
// they are fetched per room.
func (r *Client) FetchRooms(ctx context.Context) ([]domain.Room, error) {
	ids, err := r.client.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	rooms := make([]domain.Room, 0, len(ids))
	for _, id := range ids {
		data, err := r.client.Get(ctx, roomKeyPrefix+id).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load room %s: %w", id, err)
		}
		var room domain.Room
		if err := json.Unmarshal(data, &room); err != nil {
			return nil, fmt.Errorf("failed to decode room %s: %w", id, err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// SaveRoom persists room metadata and indexes the id. Messages are stored
// separately, so the metadata value never carries the sequence.
func (r *Client) SaveRoom(ctx context.Context, room domain.Room) error {
	room.Messages = nil
	room.LastMessage = nil
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to encode room %s: %w", room.ID, err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, roomKeyPrefix+room.ID, data, 0)
	pipe.SAdd(ctx, roomIndexKey, room.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save room %s: %w", room.ID, err)
	}
	return nil
}

// FetchMessages returns the authoritative sequence for the room in stored
// order, capped to the most recent historyLimit entries.
func (r *Client) FetchMessages(ctx context.Context, roomID string) ([]domain.Message, error) {
	start := int64(0)
	if r.historyLimit > 0 {
		start = -r.historyLimit
	}
	raw, err := r.client.LRange(ctx, msgKeyPrefix+roomID, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages for room %s: %w", roomID, err)
	}
	messages := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to decode message in room %s: %w", roomID, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// AppendMessage persists one message at the tail of the room's sequence. The
// caller assigns the id; appending the same message twice stores two copies,
// which the engine's id-keyed merge collapses on read.
func (r *Client) AppendMessage(ctx context.Context, msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message %s: %w", msg.ID, err)
	}
	if err := r.client.RPush(ctx, msgKeyPrefix+msg.RoomID, data).Err(); err != nil {
		return fmt.Errorf("failed to append message to room %s: %w", msg.RoomID, err)
	}
	return nil
}

// ClearMessages drops the room's stored sequence; metadata stays.
func (r *Client) ClearMessages(ctx context.Context, roomID string) error {
	if err := r.client.Del(ctx, msgKeyPrefix+roomID).Err(); err != nil {
		return fmt.Errorf("failed to clear messages for room %s: %w", roomID, err)
	}
	return nil
}

// FlushAll clears the entire database. Test helper.
func (r *Client) FlushAll(ctx context.Context) error {
	return r.client.FlushAll(ctx).Err()
}

// Close closes the Redis connection.
func (r *Client) Close() error {
	return r.client.Close()
}
