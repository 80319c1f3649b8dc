package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mwhitson/banter/internal/images"
	"github.com/mwhitson/banter/internal/votes"
)

// System manages review sessions over the public caption feed.
type System interface {
	Handler() *Handler
	CreateSession(ctx context.Context, profileID string) (*Session, error)
	Session(id uuid.UUID, profileID string) (*Session, error)
	CloseSession(id uuid.UUID, profileID string) error
	Shutdown()
}

type engine struct {
	images images.System
	store  votes.Store
	logger *slog.Logger
	config Config

	builder Builder

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func New(config Config, imgs images.System, store votes.Store, logger *slog.Logger) System {
	return &engine{
		images:   imgs,
		store:    store,
		logger:   logger.With("system", "review"),
		config:   config,
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger)
}

// CreateSession builds (or reuses) the queue for the current feed and opens
// a session for the given reviewer. The reviewer identity is required before
// any state is created.
func (e *engine) CreateSession(ctx context.Context, profileID string) (*Session, error) {
	if profileID == "" {
		return nil, ErrUnauthenticated
	}

	feed, err := e.images.ListPublicWithCaptions(ctx, e.config.QueueLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load review feed: %w", err)
	}

	queue := e.builder.Build(feed)
	session := NewSession(queue, e.store, profileID, e.config.AutoAdvanceDuration(), e.logger)

	e.mu.Lock()
	e.sessions[session.ID()] = session
	e.mu.Unlock()

	e.logger.Info("session created", "id", session.ID(), "cards", queue.Len())
	return session, nil
}

// Session returns the identified session if it exists and belongs to the
// given reviewer.
func (e *engine) Session(id uuid.UUID, profileID string) (*Session, error) {
	e.mu.Lock()
	session, ok := e.sessions[id]
	e.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.ProfileID() != profileID {
		return nil, ErrForbidden
	}
	return session, nil
}

// CloseSession tears down the identified session and removes it from the
// registry.
func (e *engine) CloseSession(id uuid.UUID, profileID string) error {
	session, err := e.Session(id, profileID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	delete(e.sessions, id)
	e.mu.Unlock()

	session.Close()
	e.logger.Info("session closed", "id", id)
	return nil
}

// Shutdown closes every open session. Wired to service shutdown.
func (e *engine) Shutdown() {
	e.mu.Lock()
	sessions := make([]*Session, 0, len(e.sessions))
	for _, session := range e.sessions {
		sessions = append(sessions, session)
	}
	e.sessions = make(map[uuid.UUID]*Session)
	e.mu.Unlock()

	for _, session := range sessions {
		session.Sync()
		session.Close()
	}
}
