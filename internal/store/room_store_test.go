package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/domain"
)

var baseTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func msg(id, roomID string, offset time.Duration) domain.Message {
	return domain.Message{
		ID:        id,
		RoomID:    roomID,
		SenderID:  "sender_" + id,
		Text:      "message " + id,
		Timestamp: baseTime.Add(offset),
		Kind:      domain.MessageKindText,
	}
}

func testRoom(id string, members ...string) domain.Room {
	return domain.Room{
		ID:           id,
		DisplayName:  "Room " + id,
		Kind:         domain.RoomKindGroup,
		Category:     "groups",
		Members:      members,
		AccessLevel:  domain.AccessMembersOnly,
		AllowedRoles: domain.AllRoles(),
		CreatedAt:    baseTime,
	}
}

func TestAppendMessageKeepsOrderAndDedupes(t *testing.T) {
	s := NewRoomStore()
	s.UpsertRoom(testRoom("r1", "u1"))

	inserted, err := s.AppendMessage("r1", msg("b", "r1", 2*time.Minute))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Out-of-order arrival lands before the existing message.
	inserted, err = s.AppendMessage("r1", msg("a", "r1", time.Minute))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Duplicate id is a no-op.
	inserted, err = s.AppendMessage("r1", msg("b", "r1", 2*time.Minute))
	require.NoError(t, err)
	assert.False(t, inserted)

	room, ok := s.Room("r1")
	require.True(t, ok)
	require.Len(t, room.Messages, 2)
	assert.Equal(t, "a", room.Messages[0].ID)
	assert.Equal(t, "b", room.Messages[1].ID)
	require.NotNil(t, room.LastMessage)
	assert.Equal(t, "b", room.LastMessage.ID)
	assert.Equal(t, baseTime.Add(2*time.Minute), room.LastActivity)
}

func TestAppendMessageTimestampTieBreaksOnID(t *testing.T) {
	s := NewRoomStore()
	s.UpsertRoom(testRoom("r1", "u1"))

	_, err := s.AppendMessage("r1", msg("z", "r1", time.Minute))
	require.NoError(t, err)
	_, err = s.AppendMessage("r1", msg("a", "r1", time.Minute))
	require.NoError(t, err)

	room, _ := s.Room("r1")
	assert.Equal(t, "a", room.Messages[0].ID)
	assert.Equal(t, "z", room.Messages[1].ID)
}

func TestReplaceMessagesIsIdempotent(t *testing.T) {
	s := NewRoomStore()
	s.UpsertRoom(testRoom("r1", "u1"))

	authoritative := []domain.Message{
		msg("c", "r1", 3*time.Minute),
		msg("a", "r1", time.Minute),
		msg("b", "r1", 2*time.Minute),
	}

	count, err := s.ReplaceMessages("r1", authoritative)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	first, _ := s.Room("r1")

	count, err = s.ReplaceMessages("r1", authoritative)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	second, _ := s.Room("r1")

	assert.Equal(t, first.Messages, second.Messages)
	assert.Equal(t, "a", second.Messages[0].ID)
	assert.Equal(t, "b", second.Messages[1].ID)
	assert.Equal(t, "c", second.Messages[2].ID)
}

func TestReplaceMessagesUnionsBothPaths(t *testing.T) {
	s := NewRoomStore()
	s.UpsertRoom(testRoom("r1", "u1"))

	// A push-delivered message the authoritative fetch has not seen yet.
	_, err := s.AppendMessage("r1", msg("push", "r1", 4*time.Minute))
	require.NoError(t, err)

	count, err := s.ReplaceMessages("r1", []domain.Message{
		msg("a", "r1", time.Minute),
		msg("b", "r1", 2*time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	room, _ := s.Room("r1")
	ids := []string{room.Messages[0].ID, room.Messages[1].ID, room.Messages[2].ID}
	assert.Equal(t, []string{"a", "b", "push"}, ids)
}

func TestReplaceMessagesAuthoritativeWinsOnConflict(t *testing.T) {
	s := NewRoomStore()
	s.UpsertRoom(testRoom("r1", "u1"))

	local := msg("a", "r1", time.Minute)
	local.Text = "local draft"
	_, err := s.AppendMessage("r1", local)
	require.NoError(t, err)

	remote := msg("a", "r1", time.Minute)
	remote.Text = "authoritative copy"
	_, err = s.ReplaceMessages("r1", []domain.Message{remote})
	require.NoError(t, err)

	room, _ := s.Room("r1")
	require.Len(t, room.Messages, 1)
	assert.Equal(t, "authoritative copy", room.Messages[0].Text)
}

func TestUpsertRoomPreservesMessageState(t *testing.T) {
	s := NewRoomStore()
	s.UpsertRoom(testRoom("r1", "u1"))
	_, err := s.AppendMessage("r1", msg("a", "r1", time.Minute))
	require.NoError(t, err)
	require.NoError(t, s.IncrementUnread("r1"))

	// A metadata refresh without messages must not drop the sequence.
	updated := testRoom("r1", "u1", "u2")
	updated.DisplayName = "Renamed"
	s.UpsertRoom(updated)

	room, _ := s.Room("r1")
	assert.Equal(t, "Renamed", room.DisplayName)
	assert.Equal(t, []string{"u1", "u2"}, room.Members)
	assert.Len(t, room.Messages, 1)
	assert.Equal(t, 1, room.UnreadCount)
}

func TestMarkReadConservation(t *testing.T) {
	s := NewRoomStore()
	s.UpsertRoom(testRoom("r1", "u1"))
	s.UpsertRoom(testRoom("r2", "u1"))
	user := domain.User{ID: "u1", Role: domain.RoleGolfer}

	require.NoError(t, s.IncrementUnread("r1"))
	require.NoError(t, s.IncrementUnread("r1"))
	require.NoError(t, s.IncrementUnread("r2"))
	before := s.GlobalUnread(user)
	assert.Equal(t, 3, before)

	prior, err := s.MarkRead("r1")
	require.NoError(t, err)
	assert.Equal(t, 2, prior)

	room, _ := s.Room("r1")
	assert.Equal(t, 0, room.UnreadCount)
	assert.Equal(t, before-prior, s.GlobalUnread(user))
}

func TestGlobalUnreadFiltersByAccess(t *testing.T) {
	s := NewRoomStore()
	staffRoom := testRoom("ops", "u1")
	staffRoom.AccessLevel = domain.AccessStaffOnly
	s.UpsertRoom(staffRoom)
	s.UpsertRoom(testRoom("general", "u1"))

	require.NoError(t, s.IncrementUnread("ops"))
	require.NoError(t, s.IncrementUnread("general"))

	golfer := domain.User{ID: "u1", Role: domain.RoleGolfer}
	staff := domain.User{ID: "u1", Role: domain.RoleStaff}
	assert.Equal(t, 1, s.GlobalUnread(golfer))
	assert.Equal(t, 2, s.GlobalUnread(staff))
}

func TestUnknownRoomOperationsAreNoOps(t *testing.T) {
	s := NewRoomStore()

	_, err := s.AppendMessage("ghost", msg("a", "ghost", 0))
	assert.ErrorIs(t, err, ErrUnknownRoom)
	_, err = s.ReplaceMessages("ghost", nil)
	assert.ErrorIs(t, err, ErrUnknownRoom)
	_, err = s.MarkRead("ghost")
	assert.ErrorIs(t, err, ErrUnknownRoom)
	assert.ErrorIs(t, s.IncrementUnread("ghost"), ErrUnknownRoom)
	assert.ErrorIs(t, s.ClearHistory("ghost"), ErrUnknownRoom)
	assert.Equal(t, 0, s.MessageCount("ghost"))
}

func TestClearHistoryKeepsRoom(t *testing.T) {
	s := NewRoomStore()
	s.UpsertRoom(testRoom("r1", "u1", "u2"))
	_, err := s.AppendMessage("r1", msg("a", "r1", time.Minute))
	require.NoError(t, err)

	require.NoError(t, s.ClearHistory("r1"))

	room, ok := s.Room("r1")
	require.True(t, ok)
	assert.Empty(t, room.Messages)
	assert.Nil(t, room.LastMessage)
	assert.Equal(t, []string{"u1", "u2"}, room.Members)
	assert.Equal(t, baseTime, room.LastActivity)
}

func TestRoomsSortedByActivity(t *testing.T) {
	s := NewRoomStore()
	s.UpsertRoom(testRoom("quiet", "u1"))
	s.UpsertRoom(testRoom("busy", "u1"))
	_, err := s.AppendMessage("busy", msg("a", "busy", time.Hour))
	require.NoError(t, err)

	rooms := s.Rooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, "busy", rooms[0].ID)
	assert.Equal(t, "quiet", rooms[1].ID)
}

func TestRoomCopyDetachesMembershipSlices(t *testing.T) {
	s := NewRoomStore()
	caller := testRoom("r1", "u1", "u2")
	caller.Admins = []string{"u1"}
	s.UpsertRoom(caller)

	// Mutating the caller's slice after the upsert must not reach the cache.
	caller.Members[0] = "intruder"

	room, ok := s.Room("r1")
	require.True(t, ok)
	assert.Equal(t, []string{"u1", "u2"}, room.Members)

	// Mutating a returned room's slices must not corrupt cached state.
	room.Members[1] = "intruder"
	room.Admins[0] = "intruder"
	room.AllowedRoles[0] = domain.RoleAdmin

	again, _ := s.Room("r1")
	assert.Equal(t, []string{"u1", "u2"}, again.Members)
	assert.Equal(t, []string{"u1"}, again.Admins)
	assert.Equal(t, domain.AllRoles(), again.AllowedRoles)
}

func TestRoomReturnsCopy(t *testing.T) {
	s := NewRoomStore()
	s.UpsertRoom(testRoom("r1", "u1"))
	_, err := s.AppendMessage("r1", msg("a", "r1", time.Minute))
	require.NoError(t, err)

	room, _ := s.Room("r1")
	room.Messages[0].Text = "mutated"

	again, _ := s.Room("r1")
	assert.Equal(t, "message a", again.Messages[0].Text)
}
