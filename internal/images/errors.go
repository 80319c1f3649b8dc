package images

import (
	"errors"
	"net/http"
)

// Domain errors for image operations.
var (
	ErrNotFound   = errors.New("image not found")
	ErrDuplicate  = errors.New("image already registered")
	ErrInvalidURL = errors.New("invalid image url")
	ErrNoCaptions = errors.New("no captions to attach")
)

// MapHTTPStatus maps image domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrNoCaptions) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
