package pipeline

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mwhitson/banter/internal/images"
	"github.com/mwhitson/banter/internal/ingest"
)

// Client is the remote surface a pipeline run drives. *ingest.Client is the
// production implementation.
type Client interface {
	Presign(ctx context.Context, contentType string) (*ingest.PresignGrant, error)
	Transfer(ctx context.Context, grant *ingest.PresignGrant, contentType string, body io.Reader) error
	Register(ctx context.Context, publicURL string) (*images.Image, error)
	GenerateCaptions(ctx context.Context, imageID uuid.UUID) ([]images.Caption, error)
}

// Runtime bundles the dependencies that pipeline nodes require.
type Runtime struct {
	Client Client
	Tokens ingest.TokenSource
	Logger *slog.Logger
}
