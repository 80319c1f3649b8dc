// Package votes implements the caption vote store for Banter.
// It owns the caption_votes table: one row per (caption, profile) pair,
// holding that profile's current vote value.
package votes

import (
	"time"

	"github.com/google/uuid"
)

// Vote values stored in a vote row.
const (
	ValueUp   = 1
	ValueDown = -1
)

// Vote represents a profile's stored vote on a caption.
type Vote struct {
	ID         uuid.UUID `json:"id"`
	CaptionID  uuid.UUID `json:"caption_id"`
	ProfileID  string    `json:"profile_id"`
	Value      int       `json:"vote_value"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Tally aggregates vote counts for one caption.
type Tally struct {
	CaptionID uuid.UUID `json:"caption_id"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
}

// ValidValue reports whether v is an accepted non-zero vote value.
func ValidValue(v int) bool {
	return v == ValueUp || v == ValueDown
}
