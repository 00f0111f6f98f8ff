package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/domain"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/metrics"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/port"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/internal/store"
	"github.com/pgatour29-pro/mcipro-golf-platform-sub000/pkg/logger"
)

// Viewport selects between the desktop dual-window layout and the mobile
// single-room view.
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportMobile  Viewport = "mobile"
)

const sendRateWindow = 3 * time.Second

// Options configures one user session's sync engine.
type Options struct {
	User          domain.User
	Viewport      Viewport
	SyncInterval  time.Duration
	SendRateBurst int
}

// SyncService keeps one user's rooms consistent between the authoritative
// store, the local cache and the visible windows. Two independent producers
// feed it: the push subscriptions and the reconciliation timer. Both converge
// through the room store's id-keyed sorted merge, so neither duplicate nor
// out-of-order delivery can corrupt a room's sequence.
type SyncService struct {
	user     domain.User
	viewport Viewport
	interval time.Duration

	rooms    *store.RoomStore
	remote   port.MessageStore
	bus      port.PushBus
	notifier port.Notifier
	log      logger.Logger
	limiter  *rate.Limiter

	// mu guards the view state owned by this session actor: window slots,
	// the mobile active-room pointer and the subscription handle set.
	mu         sync.Mutex
	windows    Windows
	activeRoom string
	subs       map[string]port.PushHandle
	subFailed  map[string]bool

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSyncService(opts Options, remote port.MessageStore, bus port.PushBus, notifier port.Notifier, log logger.Logger) *SyncService {
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = 5 * time.Second
	}
	if opts.SendRateBurst <= 0 {
		opts.SendRateBurst = 5
	}
	if opts.Viewport == "" {
		opts.Viewport = ViewportDesktop
	}
	return &SyncService{
		user:      opts.User,
		viewport:  opts.Viewport,
		interval:  opts.SyncInterval,
		rooms:     store.NewRoomStore(),
		remote:    remote,
		bus:       bus,
		notifier:  notifier,
		log:       log.WithModule("sync").WithFields(map[string]interface{}{"user": opts.User.ID}),
		limiter:   rate.NewLimiter(rate.Every(sendRateWindow/time.Duration(opts.SendRateBurst)), opts.SendRateBurst),
		subs:      make(map[string]port.PushHandle),
		subFailed: make(map[string]bool),
	}
}

// Start loads the room directory, seeds the local cache from the
// authoritative store and launches the reconciliation timer. A failed initial
// load is not fatal; the next tick retries.
func (s *SyncService) Start(ctx context.Context) error {
	if err := s.loadRooms(ctx); err != nil {
		s.log.Errorf("initial room load failed, continuing poll-only: %v", err)
	}
	s.notifier.BadgeChanged(s.rooms.GlobalUnread(s.user))

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx)
	return nil
}

// Stop cancels the reconciler and tears down every live push subscription.
func (s *SyncService) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for roomID := range s.subs {
		s.unsubscribeLocked(roomID)
	}
}

func (s *SyncService) loadRooms(ctx context.Context) error {
	remoteRooms, err := s.remote.FetchRooms(ctx)
	if err != nil {
		metrics.FetchErrorsTotal.Inc()
		return err
	}
	for _, room := range remoteRooms {
		if !domain.CanAccess(room, s.user) {
			continue
		}
		s.rooms.UpsertRoom(room)
		messages, err := s.remote.FetchMessages(ctx, room.ID)
		if err != nil {
			metrics.FetchErrorsTotal.Inc()
			s.log.Errorf("failed to load messages for room %s: %v", room.ID, err)
			continue
		}
		if _, err := s.rooms.ReplaceMessages(room.ID, messages); err != nil {
			s.log.Errorf("failed to merge messages for room %s: %v", room.ID, err)
		}
	}
	return nil
}

// SelectRoom is the "room selected" user intent. On desktop it runs the
// window-slot state machine; on mobile it swaps the single active room. The
// selected room is subscribed before any vacated room's handle is torn down.
func (s *SyncService) SelectRoom(roomID string) error {
	room, ok := s.rooms.Room(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	if !domain.CanAccess(room, s.user) {
		return ErrAccessDenied
	}

	s.mu.Lock()
	var stale string
	if s.viewport == ViewportMobile {
		previous := s.activeRoom
		s.activeRoom = roomID
		s.subscribeLocked(roomID)
		if previous != "" && previous != roomID {
			stale = previous
		}
	} else {
		_, evicted := s.windows.Assign(roomID)
		s.subscribeLocked(roomID)
		if evicted != "" && !s.windows.Contains(evicted) {
			stale = evicted
		}
	}
	if stale != "" {
		s.unsubscribeLocked(stale)
	}
	s.mu.Unlock()

	prior, err := s.rooms.MarkRead(roomID)
	if err != nil {
		s.log.Warnf("mark read on %s: %v", roomID, err)
	} else if prior > 0 {
		s.notifier.BadgeChanged(s.rooms.GlobalUnread(s.user))
	}
	s.notifier.RoomChanged(roomID)
	return nil
}

// CloseSlot clears the desktop slot (or the mobile active room) and cancels
// the vacated room's push handle unless it still occupies the other slot.
func (s *SyncService) CloseSlot(slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.viewport == ViewportMobile {
		if s.activeRoom != "" {
			s.unsubscribeLocked(s.activeRoom)
			s.activeRoom = ""
		}
		return
	}
	vacated := s.windows.Close(slot)
	if vacated != "" && !s.windows.Contains(vacated) {
		s.unsubscribeLocked(vacated)
	}
}

// SendMessage appends optimistically to the local cache, then persists and
// publishes fire-and-forget. A remote failure is logged, never rolled back:
// the message id is generated here, so once the remote append eventually
// lands, reconciliation converges on a single copy.
func (s *SyncService) SendMessage(ctx context.Context, roomID, text string) (domain.Message, error) {
	if text == "" {
		return domain.Message{}, ErrEmptyMessage
	}
	room, ok := s.rooms.Room(roomID)
	if !ok {
		return domain.Message{}, ErrRoomNotFound
	}
	if !domain.CanAccess(room, s.user) {
		return domain.Message{}, ErrAccessDenied
	}
	if !s.limiter.Allow() {
		return domain.Message{}, ErrRateLimited
	}

	msg := domain.Message{
		ID:         uuid.NewString(),
		RoomID:     roomID,
		SenderID:   s.user.ID,
		SenderName: s.user.Name,
		Text:       text,
		Timestamp:  time.Now().UTC(),
		Kind:       domain.MessageKindText,
	}
	if _, err := s.rooms.AppendMessage(roomID, msg); err != nil {
		return domain.Message{}, err
	}
	metrics.MessagesSentTotal.Inc()
	s.notifier.RoomChanged(roomID)

	go func() {
		// Fire-and-forget: detach from the caller so a closed session
		// cannot cancel an in-flight append.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.remote.AppendMessage(ctx, msg); err != nil {
			s.log.Errorf("remote append for room %s failed: %v", roomID, err)
			return
		}
		if err := s.bus.Publish(roomID, msg); err != nil {
			s.log.Errorf("push publish for room %s failed: %v", roomID, err)
		}
	}()
	return msg, nil
}

// OpenDirectRoom ensures a direct conversation with the other user exists,
// creating it in the authoritative store on first contact, and selects it.
func (s *SyncService) OpenDirectRoom(ctx context.Context, other domain.User) (string, error) {
	roomID := domain.DirectRoomID(s.user.ID, other.ID)
	if _, ok := s.rooms.Room(roomID); !ok {
		room := domain.Room{
			ID:           roomID,
			DisplayName:  other.Name,
			Kind:         domain.RoomKindDirect,
			Category:     "direct",
			Members:      []string{s.user.ID, other.ID},
			AccessLevel:  domain.AccessMembersOnly,
			AllowedRoles: domain.AllRoles(),
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.remote.SaveRoom(ctx, room); err != nil {
			return "", err
		}
		s.rooms.UpsertRoom(room)
	}
	if err := s.SelectRoom(roomID); err != nil {
		return "", err
	}
	return roomID, nil
}

// ClearHistory empties the room's message sequence locally and remotely.
// Membership and metadata survive; rooms are never deleted by this engine.
func (s *SyncService) ClearHistory(ctx context.Context, roomID string) error {
	if err := s.rooms.ClearHistory(roomID); err != nil {
		if errors.Is(err, store.ErrUnknownRoom) {
			return ErrRoomNotFound
		}
		return err
	}
	if err := s.remote.ClearMessages(ctx, roomID); err != nil {
		s.log.Errorf("remote clear for room %s failed: %v", roomID, err)
	}
	s.notifier.RoomChanged(roomID)
	return nil
}

// Rooms returns the user's visible room list, newest activity first.
func (s *SyncService) Rooms() []domain.Room {
	all := s.rooms.Rooms()
	visible := make([]domain.Room, 0, len(all))
	for _, room := range all {
		if domain.CanAccess(room, s.user) {
			visible = append(visible, room)
		}
	}
	return visible
}

// Room returns one room from the local cache.
func (s *SyncService) Room(roomID string) (domain.Room, bool) {
	return s.rooms.Room(roomID)
}

// GlobalUnread is the badge value: the exact sum of unread counters over
// accessible rooms.
func (s *SyncService) GlobalUnread() int {
	return s.rooms.GlobalUnread(s.user)
}

// ActiveRooms returns the rooms currently on screen: the occupied slots on
// desktop, the single open room on mobile.
func (s *SyncService) ActiveRooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewport == ViewportMobile {
		if s.activeRoom == "" {
			return nil
		}
		return []string{s.activeRoom}
	}
	return s.windows.Rooms()
}

// SlotRoom reports the desktop slot occupant.
func (s *SyncService) SlotRoom(slot int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows.Slot(slot)
}

// Subscribed reports whether the room has a live push handle.
func (s *SyncService) Subscribed(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[roomID]
	return ok
}

func (s *SyncService) isActive(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewport == ViewportMobile {
		return s.activeRoom == roomID
	}
	return s.windows.Contains(roomID)
}

// handlePush is the push ingestor. It tolerates duplicate, out-of-order and
// racing delivery: the append is an id-deduplicated sorted insert, and the
// unread counter only moves when the insert actually happened.
func (s *SyncService) handlePush(msg domain.Message) {
	if msg.SenderID == s.user.ID {
		// The optimistic local append already happened at send time.
		return
	}
	metrics.PushMessagesTotal.Inc()

	inserted, err := s.rooms.AppendMessage(msg.RoomID, msg)
	if err != nil {
		// The room may not be loaded yet; the reconciler will pick the
		// message up once it is.
		s.log.Warnf("push for unknown room %s dropped: %v", msg.RoomID, err)
		return
	}
	if !inserted {
		return
	}
	if s.isActive(msg.RoomID) {
		s.notifier.RoomChanged(msg.RoomID)
		return
	}
	if err := s.rooms.IncrementUnread(msg.RoomID); err != nil {
		s.log.Warnf("unread bump on %s: %v", msg.RoomID, err)
		return
	}
	s.notifier.BadgeChanged(s.rooms.GlobalUnread(s.user))
	s.notifier.RoomChanged(msg.RoomID)
}

// subscribeLocked opens the room's push subscription, replacing any existing
// handle after tearing it down. Open failures leave the session poll-only for
// that room and are logged once until a retry succeeds. Caller holds s.mu.
func (s *SyncService) subscribeLocked(roomID string) {
	if existing, ok := s.subs[roomID]; ok {
		if err := existing.Unsubscribe(); err != nil {
			s.log.Warnf("replacing subscription for %s: %v", roomID, err)
		}
		delete(s.subs, roomID)
		metrics.LiveSubscriptions.Dec()
	}
	handle, err := s.bus.Subscribe(roomID, s.handlePush)
	if err != nil {
		metrics.SubscriptionErrorsTotal.Inc()
		if !s.subFailed[roomID] {
			s.subFailed[roomID] = true
			s.log.Errorf("push subscribe for room %s failed, poll-only until retry: %v", roomID, err)
		}
		return
	}
	delete(s.subFailed, roomID)
	s.subs[roomID] = handle
	metrics.LiveSubscriptions.Inc()
}

// unsubscribeLocked tears down the handle if present. Caller holds s.mu.
func (s *SyncService) unsubscribeLocked(roomID string) {
	handle, ok := s.subs[roomID]
	if !ok {
		return
	}
	if err := handle.Unsubscribe(); err != nil {
		s.log.Warnf("unsubscribe for %s: %v", roomID, err)
	}
	delete(s.subs, roomID)
	metrics.LiveSubscriptions.Dec()
}

func (s *SyncService) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

// reconcile is one timer tick: pull the authoritative sequence for the rooms
// on screen first, then for every room the user is a member of. A fetch
// failure for one room is isolated; it never aborts the rest of the tick or
// the timer. Unread counters are never recomputed here - they belong to the
// push path alone.
func (s *SyncService) reconcile(ctx context.Context) {
	metrics.ReconcileTicksTotal.Inc()

	seen := make(map[string]bool)
	for _, roomID := range s.ActiveRooms() {
		seen[roomID] = true
		s.reconcileRoom(ctx, roomID)
	}
	for _, room := range s.rooms.Rooms() {
		if seen[room.ID] || !room.HasMember(s.user.ID) {
			continue
		}
		s.reconcileRoom(ctx, room.ID)
	}
	// A retry for rooms whose push channel failed to open: the view is
	// still open, so the handle should come back when the broker does.
	s.mu.Lock()
	for roomID := range s.subFailed {
		if s.viewportContainsLocked(roomID) {
			s.subscribeLocked(roomID)
		} else {
			delete(s.subFailed, roomID)
		}
	}
	s.mu.Unlock()
}

func (s *SyncService) viewportContainsLocked(roomID string) bool {
	if s.viewport == ViewportMobile {
		return s.activeRoom == roomID
	}
	return s.windows.Contains(roomID)
}

func (s *SyncService) reconcileRoom(ctx context.Context, roomID string) {
	before := s.rooms.MessageCount(roomID)
	authoritative, err := s.remote.FetchMessages(ctx, roomID)
	if err != nil {
		metrics.FetchErrorsTotal.Inc()
		s.log.Warnf("fetch for room %s failed, retrying next tick: %v", roomID, err)
		return
	}
	after, err := s.rooms.ReplaceMessages(roomID, authoritative)
	if err != nil {
		s.log.Warnf("merge for room %s skipped: %v", roomID, err)
		return
	}
	if after != before {
		s.notifier.RoomChanged(roomID)
	}
}
