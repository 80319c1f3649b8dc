package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mwhitson/banter/internal/generator"
	"github.com/mwhitson/banter/internal/identity"
	"github.com/mwhitson/banter/internal/images"
	"github.com/mwhitson/banter/pkg/handlers"
	"github.com/mwhitson/banter/pkg/routes"
	"github.com/mwhitson/banter/pkg/storage"
)

// pipelineHandler exposes the server side of the upload pipeline: grant
// issuance, image registration, and caption generation. Clients drive these
// endpoints in order; each one stands alone and performs no compensation
// for earlier stages.
type pipelineHandler struct {
	store     storage.System
	images    images.System
	generator generator.System
	logger    *slog.Logger
}

func newPipelineHandler(
	store storage.System,
	imgs images.System,
	gen generator.System,
	logger *slog.Logger,
) *pipelineHandler {
	return &pipelineHandler{
		store:     store,
		images:    imgs,
		generator: gen,
		logger:    logger.With("handler", "pipeline"),
	}
}

func (h *pipelineHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/pipeline",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/generate-presigned-url", Handler: h.presign},
			{Method: "POST", Pattern: "/upload-image-from-url", Handler: h.register},
			{Method: "POST", Pattern: "/generate-captions", Handler: h.captions},
		},
	}
}

type presignRequest struct {
	FileType string `json:"fileType"`
}

func (h *pipelineHandler) presign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("invalid presign payload"))
		return
	}

	grant, err := h.store.Presign(r.Context(), req.FileType)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, grant)
}

type registerRequest struct {
	ImageURL    string `json:"imageUrl"`
	IsCommonUse bool   `json:"isCommonUse"`
}

func (h *pipelineHandler) register(w http.ResponseWriter, r *http.Request) {
	profile, _ := identity.FromContext(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("invalid register payload"))
		return
	}

	// Registration only accepts blobs under this service's public base.
	if _, err := h.store.KeyFromPublicURL(req.ImageURL); err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	img, err := h.images.Register(r.Context(), images.RegisterCommand{
		URL:         req.ImageURL,
		IsCommonUse: req.IsCommonUse,
		UploadedBy:  profile,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, images.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, img)
}

type captionsRequest struct {
	ImageID uuid.UUID `json:"imageId"`
}

func (h *pipelineHandler) captions(w http.ResponseWriter, r *http.Request) {
	var req captionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("invalid captions payload"))
		return
	}

	img, err := h.images.Find(r.Context(), req.ImageID)
	if err != nil {
		handlers.RespondError(w, h.logger, images.MapHTTPStatus(err), err)
		return
	}

	contents, err := h.generator.Generate(r.Context(), img.URL)
	if err != nil {
		handlers.RespondError(w, h.logger, generator.MapHTTPStatus(err), err)
		return
	}

	captions, err := h.images.AttachCaptions(r.Context(), img.ID, contents, images.SourceGenerated)
	if err != nil {
		handlers.RespondError(w, h.logger, images.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, captions)
}
