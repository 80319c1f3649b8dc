// Package images implements the image domain for Banter.
// It provides types, data access, and business logic for registering
// uploaded images and managing their captions.
package images

import (
	"time"

	"github.com/google/uuid"
)

// Caption source values.
const (
	SourceGenerated = "generated"
	SourceUser      = "user"
)

// Image represents a registered image served from public storage.
type Image struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	IsPublic    bool      `json:"is_public"`
	IsCommonUse bool      `json:"is_common_use"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Caption represents one caption attached to an image.
type Caption struct {
	ID        uuid.UUID `json:"id"`
	ImageID   uuid.UUID `json:"image_id"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// ImageWithCaptions bundles an image with all of its captions.
// This is the source shape review queues are built from.
type ImageWithCaptions struct {
	Image
	Captions []Caption `json:"captions"`
}

// RegisterCommand carries the data needed to register an already-uploaded image.
// URL must point at the public location the upload stage produced.
type RegisterCommand struct {
	URL         string
	IsCommonUse bool
	UploadedBy  string
}
