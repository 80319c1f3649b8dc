package votes

import (
	"errors"
	"net/http"
)

// Domain errors for vote operations.
var (
	ErrNotFound     = errors.New("vote not found")
	ErrDuplicate    = errors.New("vote already exists")
	ErrInvalidValue = errors.New("vote value must be 1 or -1")
)

// MapHTTPStatus maps vote domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidValue) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
