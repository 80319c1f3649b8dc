package review

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mwhitson/banter/internal/identity"
	"github.com/mwhitson/banter/pkg/handlers"
	"github.com/mwhitson/banter/pkg/routes"
)

// SessionView is the wire shape for session responses.
type SessionView struct {
	ID       uuid.UUID `json:"id"`
	Snapshot Snapshot  `json:"snapshot"`
}

type voteRequest struct {
	CaptionID uuid.UUID `json:"caption_id"`
	Value     int       `json:"value"`
}

// Handler provides HTTP endpoints for review sessions. All endpoints require
// an authenticated reviewer; the identity middleware rejects anonymous
// requests before they reach these handlers.
type Handler struct {
	sys      System
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "review"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Routes returns the route group definition for review endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/review",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/sessions", Handler: h.Create},
			{Method: "GET", Pattern: "/sessions/{id}", Handler: h.Snapshot},
			{Method: "POST", Pattern: "/sessions/{id}/vote", Handler: h.Vote},
			{Method: "POST", Pattern: "/sessions/{id}/advance", Handler: h.Advance},
			{Method: "POST", Pattern: "/sessions/{id}/back", Handler: h.Back},
			{Method: "GET", Pattern: "/sessions/{id}/watch", Handler: h.Watch},
			{Method: "DELETE", Pattern: "/sessions/{id}", Handler: h.Close},
		},
	}
}

// Create opens a review session for the authenticated reviewer.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	profile, ok := identity.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthenticated)
		return
	}

	session, err := h.sys.CreateSession(r.Context(), profile)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, SessionView{
		ID:       session.ID(),
		Snapshot: session.Snapshot(),
	})
}

// Snapshot returns the current view of a session.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SessionView{
		ID:       session.ID(),
		Snapshot: session.Snapshot(),
	})
}

// Vote applies a vote toggle to a card in the session.
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("invalid vote payload"))
		return
	}

	snap, err := session.Vote(req.CaptionID, req.Value)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SessionView{ID: session.ID(), Snapshot: snap})
}

// Advance moves the session cursor to the next card.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	snap := session.Advance()
	handlers.RespondJSON(w, http.StatusOK, SessionView{ID: session.ID(), Snapshot: snap})
}

// Back undoes the most recent vote.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	snap := session.Back()
	handlers.RespondJSON(w, http.StatusOK, SessionView{ID: session.ID(), Snapshot: snap})
}

// Watch upgrades to a websocket and streams session snapshots until the
// session reaches a terminal state or either side disconnects.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Drain reads so client close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for snap := range session.Watch() {
		select {
		case <-done:
			return
		default:
		}
		if err := conn.WriteJSON(SessionView{ID: session.ID(), Snapshot: snap}); err != nil {
			return
		}
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Close tears down a session.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	profile, ok := identity.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthenticated)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrSessionNotFound)
		return
	}

	if err := h.sys.CloseSession(id, profile); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	profile, ok := identity.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthenticated)
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrSessionNotFound)
		return nil, false
	}

	session, err := h.sys.Session(id, profile)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}

	return session, true
}
