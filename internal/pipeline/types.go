// Package pipeline implements the client-side image upload pipeline: a
// strict sequence of presign, transfer, register, and caption generation
// stages driven through a state graph. A stage failure stops the run at
// that stage; nothing is retried and nothing is compensated.
package pipeline

import (
	"github.com/mwhitson/banter/internal/images"
	"github.com/mwhitson/banter/internal/ingest"
)

// Stage identifies where in the pipeline a run is, or where it failed.
type Stage string

const (
	StageValidate Stage = "validate"
	StagePresign  Stage = "presign"
	StageTransfer Stage = "transfer"
	StageRegister Stage = "register"
	StageGenerate Stage = "generate"
)

// Upload is the local file a pipeline run pushes through ingestion.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Result is the outcome of a completed run: the registered image and the
// captions generated for it.
type Result struct {
	Image    images.Image        `json:"image"`
	Captions []images.Caption    `json:"captions"`
	Grant    ingest.PresignGrant `json:"grant"`
}

// State bag keys shared between pipeline nodes.
const (
	KeyUpload   = "upload"
	KeyGrant    = "grant"
	KeyImage    = "image"
	KeyCaptions = "captions"
)

// allowedTypes is the set of content types accepted for upload. Checked
// locally before the first network call.
var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"image/heic": {},
}
