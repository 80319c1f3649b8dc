package storage

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrUnsupportedContentType indicates no upload target can be issued for the content type.
	ErrUnsupportedContentType = errors.New("unsupported content type")
	// ErrForeignURL indicates a public URL that is not rooted at the configured public base.
	ErrForeignURL = errors.New("url is not served from this storage account")
)

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrEmptyKey) ||
		errors.Is(err, ErrInvalidKey) ||
		errors.Is(err, ErrUnsupportedContentType) ||
		errors.Is(err, ErrForeignURL) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
