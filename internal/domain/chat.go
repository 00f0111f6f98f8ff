package domain

import (
	"sort"
	"strings"
	"time"
)

type MessageKind string

const (
	MessageKindText   MessageKind = "text"
	MessageKindSystem MessageKind = "system"
)

// Message is immutable once created. Within a room no two messages share an ID.
type Message struct {
	ID         string      `json:"id"`
	RoomID     string      `json:"room_id"`
	SenderID   string      `json:"sender_id"`
	SenderName string      `json:"sender_name"`
	Text       string      `json:"text"`
	Timestamp  time.Time   `json:"timestamp"`
	Kind       MessageKind `json:"kind"`
}

// Before reports whether m orders ahead of other in a room sequence.
// Ordering is ascending by (timestamp, id); the id tie-break keeps the
// order total so merges from independent delivery paths are deterministic.
func (m Message) Before(other Message) bool {
	if !m.Timestamp.Equal(other.Timestamp) {
		return m.Timestamp.Before(other.Timestamp)
	}
	return m.ID < other.ID
}

type RoomKind string

const (
	RoomKindDirect RoomKind = "direct"
	RoomKindGroup  RoomKind = "group"
)

type AccessLevel string

const (
	AccessPublic      AccessLevel = "public"
	AccessMembersOnly AccessLevel = "members-only"
	AccessStaffOnly   AccessLevel = "staff-only"
	AccessAdminOnly   AccessLevel = "admin-only"
)

type Role string

const (
	RoleGolfer  Role = "golfer"
	RoleCaddy   Role = "caddy"
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// AllRoles is the default allowed-role set for rooms that do not restrict roles.
func AllRoles() []Role {
	return []Role{RoleGolfer, RoleCaddy, RoleStaff, RoleManager, RoleAdmin}
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Room is mutable and owned exclusively by the room store.
type Room struct {
	ID           string      `json:"id"`
	DisplayName  string      `json:"display_name"`
	Kind         RoomKind    `json:"kind"`
	Category     string      `json:"category"`
	Members      []string    `json:"members"`
	Admins       []string    `json:"admins"`
	Moderators   []string    `json:"moderators"`
	AccessLevel  AccessLevel `json:"access_level"`
	AllowedRoles []Role      `json:"allowed_roles"`
	Messages     []Message   `json:"messages,omitempty"`
	LastMessage  *Message    `json:"last_message,omitempty"`
	LastActivity time.Time   `json:"last_activity"`
	UnreadCount  int         `json:"unread_count"`
	Muted        bool        `json:"muted"`
	CreatedAt    time.Time   `json:"created_at"`
}

// HasMember reports whether the user id is in the room's member set.
func (r Room) HasMember(userID string) bool {
	for _, id := range r.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// IsRoomAdmin reports whether the user id is in the room's admin subset.
func (r Room) IsRoomAdmin(userID string) bool {
	for _, id := range r.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

// DirectRoomID derives the canonical id for a direct conversation between two
// users. The pair is sorted so both participants compute the same id.
func DirectRoomID(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return "dm_" + strings.Join(pair, "_")
}
