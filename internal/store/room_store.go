package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/domain"
)

// ErrUnknownRoom is returned when an operation references a room that is not
// loaded locally yet. Callers treat it as a logged no-op: a push event can
// legitimately race ahead of the room-list load.
var ErrUnknownRoom = errors.New("unknown room")

// RoomStore is the local in-memory cache of rooms and their message
// sequences. It is the only mutable resource shared between the push and
// reconcile paths, so every mutation runs under its mutex. Callers must not
// perform network I/O while holding an operation open; fetch first, then
// apply.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*domain.Room)}
}

// UpsertRoom inserts the room or merges metadata over the existing entry.
// Message state, unread counters and mute flags survive a metadata-only
// update; when the incoming value carries messages they are merged by id
// rather than replacing the cached sequence wholesale.
func (s *RoomStore) UpsertRoom(room domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rooms[room.ID]
	if !ok {
		// Detach from the caller's slices; the cached room must not share
		// backing arrays with anything outside the store.
		fresh := room
		fresh.Members = append([]string(nil), room.Members...)
		fresh.Admins = append([]string(nil), room.Admins...)
		fresh.Moderators = append([]string(nil), room.Moderators...)
		fresh.AllowedRoles = append([]domain.Role(nil), room.AllowedRoles...)
		fresh.Messages = mergeByID(nil, room.Messages)
		refreshDerived(&fresh)
		s.rooms[room.ID] = &fresh
		return
	}

	existing.DisplayName = room.DisplayName
	existing.Kind = room.Kind
	existing.Category = room.Category
	existing.Members = append([]string(nil), room.Members...)
	existing.Admins = append([]string(nil), room.Admins...)
	existing.Moderators = append([]string(nil), room.Moderators...)
	existing.AccessLevel = room.AccessLevel
	existing.AllowedRoles = append([]domain.Role(nil), room.AllowedRoles...)
	if !room.CreatedAt.IsZero() {
		existing.CreatedAt = room.CreatedAt
	}
	if len(room.Messages) > 0 {
		existing.Messages = mergeByID(existing.Messages, room.Messages)
	}
	refreshDerived(existing)
}

// AppendMessage inserts the message preserving ascending (timestamp, id)
// order. A message whose id is already present is dropped; the returned bool
// reports whether an insert happened.
func (s *RoomStore) AppendMessage(roomID string, msg domain.Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return false, ErrUnknownRoom
	}
	for _, m := range room.Messages {
		if m.ID == msg.ID {
			return false, nil
		}
	}
	idx := sort.Search(len(room.Messages), func(i int) bool {
		return msg.Before(room.Messages[i])
	})
	room.Messages = append(room.Messages, domain.Message{})
	copy(room.Messages[idx+1:], room.Messages[idx:])
	room.Messages[idx] = msg
	refreshDerived(room)
	return true, nil
}

// ReplaceMessages merges the authoritative sequence into the cached one: the
// result is the id-keyed union, the authoritative copy winning on conflicting
// fields, re-sorted by (timestamp, id). Applying the same authoritative set
// twice yields the same sequence, which is what makes repeated reconciliation
// safe regardless of arrival order. The post-merge message count is returned.
func (s *RoomStore) ReplaceMessages(roomID string, authoritative []domain.Message) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return 0, ErrUnknownRoom
	}
	room.Messages = mergeByID(room.Messages, authoritative)
	refreshDerived(room)
	return len(room.Messages), nil
}

// MarkRead clears the unread counter and returns its prior value.
func (s *RoomStore) MarkRead(roomID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return 0, ErrUnknownRoom
	}
	prior := room.UnreadCount
	room.UnreadCount = 0
	return prior, nil
}

// IncrementUnread bumps the unread counter by one. Only the push path calls
// this, and only for rooms that are not the active view; the reconcile path
// never touches unread counts so the two paths cannot double-count.
func (s *RoomStore) IncrementUnread(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrUnknownRoom
	}
	room.UnreadCount++
	return nil
}

// ClearHistory empties the message sequence only; membership and metadata are
// untouched.
func (s *RoomStore) ClearHistory(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrUnknownRoom
	}
	room.Messages = nil
	room.LastMessage = nil
	room.LastActivity = room.CreatedAt
	return nil
}

// Room returns a copy of the room, so callers can read it without holding the
// store lock.
func (s *RoomStore) Room(roomID string) (domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return domain.Room{}, false
	}
	return copyRoom(room), true
}

// Rooms returns copies of all rooms sorted by last activity, newest first.
func (s *RoomStore) Rooms() []domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, copyRoom(room))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActivity.Equal(out[j].LastActivity) {
			return out[i].LastActivity.After(out[j].LastActivity)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// MessageCount reports the cached sequence length; zero for unknown rooms.
func (s *RoomStore) MessageCount(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if room, ok := s.rooms[roomID]; ok {
		return len(room.Messages)
	}
	return 0
}

// GlobalUnread sums unread counters over the rooms the user can access. The
// value is exact and uncapped; display capping is the UI's concern.
func (s *RoomStore) GlobalUnread(user domain.User) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, room := range s.rooms {
		if domain.CanAccess(*room, user) {
			total += room.UnreadCount
		}
	}
	return total
}

// mergeByID unions the two sequences keyed by message id. Entries from the
// authoritative slice win on conflict. The result is sorted by (timestamp, id).
func mergeByID(existing, authoritative []domain.Message) []domain.Message {
	byID := make(map[string]domain.Message, len(existing)+len(authoritative))
	for _, m := range existing {
		byID[m.ID] = m
	}
	for _, m := range authoritative {
		byID[m.ID] = m
	}
	merged := make([]domain.Message, 0, len(byID))
	for _, m := range byID {
		merged = append(merged, m)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Before(merged[j])
	})
	return merged
}

func refreshDerived(room *domain.Room) {
	if len(room.Messages) == 0 {
		room.LastMessage = nil
		if room.LastActivity.IsZero() {
			room.LastActivity = room.CreatedAt
		}
		return
	}
	last := room.Messages[len(room.Messages)-1]
	room.LastMessage = &last
	room.LastActivity = last.Timestamp
}

func copyRoom(room *domain.Room) domain.Room {
	out := *room
	out.Members = append([]string(nil), room.Members...)
	out.Admins = append([]string(nil), room.Admins...)
	out.Moderators = append([]string(nil), room.Moderators...)
	out.AllowedRoles = append([]domain.Role(nil), room.AllowedRoles...)
	out.Messages = append([]domain.Message(nil), room.Messages...)
	if room.LastMessage != nil {
		last := *room.LastMessage
		out.LastMessage = &last
	}
	return out
}
