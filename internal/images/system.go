package images

import (
	"context"

	"github.com/google/uuid"

	"github.com/mwhitson/banter/pkg/pagination"
)

// System defines the public contract for image domain operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Image], error)
	// ListPublicWithCaptions returns the newest public images together with
	// their captions, capped at limit. Images without captions are omitted.
	ListPublicWithCaptions(ctx context.Context, limit int) ([]ImageWithCaptions, error)
	Find(ctx context.Context, id uuid.UUID) (*Image, error)
	Register(ctx context.Context, cmd RegisterCommand) (*Image, error)
	AttachCaptions(ctx context.Context, imageID uuid.UUID, contents []string, source string) ([]Caption, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
