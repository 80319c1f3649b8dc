package review

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitson/banter/internal/votes"
)

// Snapshot is a read-only view of a session at one point in time.
// Exactly one of Card, NothingToReview, or AllReviewed describes what the
// reviewer should see.
type Snapshot struct {
	Position        int                     `json:"position"`
	Total           int                     `json:"total"`
	Card            *Card                   `json:"card,omitempty"`
	VoteState       VoteState               `json:"vote_state"`
	Votes           map[uuid.UUID]VoteState `json:"votes"`
	NothingToReview bool                    `json:"nothing_to_review"`
	AllReviewed     bool                    `json:"all_reviewed"`
	CanBack         bool                    `json:"can_back"`
}

// historyEntry records the state displaced by the most recent vote. Only one
// entry is kept; each vote overwrites it, so Back can undo a single step.
type historyEntry struct {
	position  int
	captionID uuid.UUID
	previous  VoteState
}

// Session walks one reviewer through a queue. All local state changes are
// applied synchronously under the session lock; remote vote writes happen
// afterward in background goroutines serialized per caption, and a remote
// failure never rolls back local state.
type Session struct {
	id        uuid.UUID
	profileID string
	queue     *Queue
	store     votes.Store
	logger    *slog.Logger
	delay     time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	cursor       int
	local        map[uuid.UUID]VoteState
	history      *historyEntry
	allReviewed  bool
	closed       bool
	advanceTimer *time.Timer
	watchers     []chan Snapshot

	gatesMu sync.Mutex
	gates   map[uuid.UUID]*sync.Mutex

	pending sync.WaitGroup
}

// NewSession creates a session over queue for the given reviewer. delay is
// how long a vote on the current card waits before auto-advancing; zero or
// negative disables auto-advance.
func NewSession(queue *Queue, store votes.Store, profileID string, delay time.Duration, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		id:        uuid.New(),
		profileID: profileID,
		queue:     queue,
		store:     store,
		logger:    logger.With("session", profileID),
		delay:     delay,
		ctx:       ctx,
		cancel:    cancel,
		local:     make(map[uuid.UUID]VoteState),
		gates:     make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) ProfileID() string {
	return s.profileID
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Vote applies a vote toggle to the given card. Voting the current value
// again clears it; voting the opposite value switches directly without
// passing through Unvoted. The local state and snapshot update immediately;
// the remote write follows in the background. Once every card has been
// reviewed, further votes are rejected with ErrReviewComplete.
func (s *Session) Vote(captionID uuid.UUID, value int) (Snapshot, error) {
	if s.profileID == "" {
		return Snapshot{}, ErrUnauthenticated
	}
	if !votes.ValidValue(value) {
		return Snapshot{}, ErrInvalidVote
	}

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrSessionClosed
	}
	if s.allReviewed {
		s.mu.Unlock()
		return Snapshot{}, ErrReviewComplete
	}

	pos, ok := s.queue.Position(captionID)
	if !ok {
		s.mu.Unlock()
		return Snapshot{}, ErrUnknownCard
	}

	current := s.local[captionID]
	next := VoteState(value)
	if current == next {
		next = Unvoted
	}

	s.history = &historyEntry{
		position:  s.cursor,
		captionID: captionID,
		previous:  current,
	}
	s.setLocalLocked(captionID, next)

	if pos == s.cursor && !s.allReviewed && s.delay > 0 {
		s.scheduleAdvanceLocked()
	}

	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	s.mu.Unlock()

	s.pending.Add(1)
	go s.reconcile(captionID)

	return snap, nil
}

// Advance moves the cursor to the next card, cancelling any pending
// auto-advance. Advancing past the final card puts the session in the
// all-reviewed terminal state; further calls are no-ops.
func (s *Session) Advance() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAdvanceLocked()

	if s.closed || s.queue.Len() == 0 || s.allReviewed {
		return s.snapshotLocked()
	}

	s.cursor++
	if s.cursor >= s.queue.Len() {
		s.cursor = s.queue.Len()
		s.allReviewed = true
	}

	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	if s.allReviewed {
		s.closeWatchersLocked()
	}
	return snap
}

// Back undoes the most recent vote: the cursor returns to the card that was
// voted on and its vote state is restored, with the remote store re-synced
// to the restored value. With no recorded vote, or at the first card with
// nothing to restore, Back is a no-op.
func (s *Session) Back() Snapshot {
	s.mu.Lock()

	s.cancelAdvanceLocked()

	if s.closed || s.history == nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}

	entry := s.history
	s.history = nil
	s.cursor = entry.position
	s.allReviewed = false
	s.setLocalLocked(entry.captionID, entry.previous)

	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	s.mu.Unlock()

	s.pending.Add(1)
	go s.reconcile(entry.captionID)

	return snap
}

// Watch subscribes to snapshot updates. The returned channel carries the
// current snapshot immediately, then every subsequent change, and closes
// when the session reaches the all-reviewed state or is closed. Slow
// receivers miss intermediate snapshots rather than blocking the session.
func (s *Session) Watch() <-chan Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 8)
	snap := s.snapshotLocked()
	ch <- snap

	if s.closed || s.allReviewed || snap.NothingToReview {
		close(ch)
		return ch
	}

	s.watchers = append(s.watchers, ch)
	return ch
}

// Sync blocks until every in-flight remote vote write has settled. Intended
// for shutdown and tests; callers never need it for correctness.
func (s *Session) Sync() {
	s.pending.Wait()
}

// Close tears the session down: pending auto-advance is cancelled, in-flight
// remote writes are abandoned at the context boundary, and watcher channels
// close.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	s.cancelAdvanceLocked()
	s.cancel()
	s.closeWatchersLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Position:        s.cursor,
		Total:           s.queue.Len(),
		NothingToReview: s.queue.Len() == 0,
		AllReviewed:     s.allReviewed,
		CanBack:         s.history != nil,
		Votes:           make(map[uuid.UUID]VoteState, len(s.local)),
	}

	for id, state := range s.local {
		snap.Votes[id] = state
	}

	if !snap.NothingToReview && !snap.AllReviewed {
		card := s.queue.Card(s.cursor)
		snap.Card = &card
		snap.VoteState = s.local[card.CaptionID]
	}

	return snap
}

func (s *Session) setLocalLocked(captionID uuid.UUID, state VoteState) {
	if state == Unvoted {
		delete(s.local, captionID)
		return
	}
	s.local[captionID] = state
}

func (s *Session) scheduleAdvanceLocked() {
	s.cancelAdvanceLocked()
	s.advanceTimer = time.AfterFunc(s.delay, func() {
		s.Advance()
	})
}

func (s *Session) cancelAdvanceLocked() {
	if s.advanceTimer != nil {
		s.advanceTimer.Stop()
		s.advanceTimer = nil
	}
}

func (s *Session) notifyLocked(snap Snapshot) {
	for _, ch := range s.watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Session) closeWatchersLocked() {
	for _, ch := range s.watchers {
		close(ch)
	}
	s.watchers = nil
}

// reconcile pushes one caption's local vote state to the store. Writes for
// the same caption are serialized through a per-caption gate, and the state
// to write is read after the gate is held, so a rapid toggle always settles
// on the latest local value. Failures are logged and dropped; the local
// state stands.
func (s *Session) reconcile(captionID uuid.UUID) {
	defer s.pending.Done()

	gate := s.gate(captionID)
	gate.Lock()
	defer gate.Unlock()

	if s.ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	state := s.local[captionID]
	s.mu.Unlock()

	if state == Unvoted {
		if err := s.store.Delete(s.ctx, captionID, s.profileID); err != nil {
			s.logger.Warn("failed to clear vote", "caption", captionID, "error", err)
		}
		return
	}

	now := time.Now()

	existing, err := s.store.Find(s.ctx, captionID, s.profileID)
	switch {
	case err == nil:
		if _, err := s.store.Update(s.ctx, existing.ID, int(state), now); err != nil {
			s.logger.Warn("failed to update vote", "caption", captionID, "error", err)
		}
	case errors.Is(err, votes.ErrNotFound):
		if _, err := s.store.Insert(s.ctx, captionID, s.profileID, int(state), now); err != nil {
			s.logger.Warn("failed to insert vote", "caption", captionID, "error", err)
		}
	default:
		s.logger.Warn("failed to look up vote", "caption", captionID, "error", err)
	}
}

func (s *Session) gate(captionID uuid.UUID) *sync.Mutex {
	s.gatesMu.Lock()
	defer s.gatesMu.Unlock()

	gate, ok := s.gates[captionID]
	if !ok {
		gate = &sync.Mutex{}
		s.gates[captionID] = gate
	}
	return gate
}
