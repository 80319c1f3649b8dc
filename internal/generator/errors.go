package generator

import (
	"errors"
	"net/http"
)

var (
	ErrImageNotFound  = errors.New("generator: image not found in storage")
	ErrGenerateFailed = errors.New("generator: caption generation failed")
	ErrNoCaptions     = errors.New("generator: model returned no captions")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoCaptions):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
