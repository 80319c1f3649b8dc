package votes

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the vote row operations the review engine reconciles against.
// Implementations must treat deletion of an absent row as success.
type Store interface {
	// Find returns the vote row for (captionID, profileID), or ErrNotFound.
	Find(ctx context.Context, captionID uuid.UUID, profileID string) (*Vote, error)
	// Insert creates a new vote row with created and modified set to now.
	Insert(ctx context.Context, captionID uuid.UUID, profileID string, value int, now time.Time) (*Vote, error)
	// Update sets the value and modified timestamp of an existing row.
	Update(ctx context.Context, id uuid.UUID, value int, now time.Time) (*Vote, error)
	// Delete removes the row for (captionID, profileID). Absence is not an error.
	Delete(ctx context.Context, captionID uuid.UUID, profileID string) error
}

// System extends Store with query operations for the HTTP surface.
type System interface {
	Store

	Handler() *Handler

	// ListByProfile returns all vote rows belonging to one profile.
	ListByProfile(ctx context.Context, profileID string) ([]Vote, error)
	// TallyFor aggregates up and down vote counts for one caption.
	TallyFor(ctx context.Context, captionID uuid.UUID) (*Tally, error)
}
