package votes

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mwhitson/banter/internal/identity"
	"github.com/mwhitson/banter/pkg/handlers"
	"github.com/mwhitson/banter/pkg/routes"
)

// Handler provides HTTP endpoints for vote queries.
// Vote writes go through review sessions, not through this handler.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "votes"),
	}
}

// Routes returns the route group definition for vote endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/votes",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Mine},
			{Method: "GET", Pattern: "/tally/{captionId}", Handler: h.Tally},
		},
	}
}

// Mine returns all vote rows belonging to the calling profile.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	profileID, ok := identity.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, identity.ErrMissingToken)
		return
	}

	result, err := h.sys.ListByProfile(r.Context(), profileID)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Tally returns aggregate up and down counts for one caption.
func (h *Handler) Tally(w http.ResponseWriter, r *http.Request) {
	captionID, err := uuid.Parse(r.PathValue("captionId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	tally, err := h.sys.TallyFor(r.Context(), captionID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, tally)
}
