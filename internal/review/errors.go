package review

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("review: reviewer identity required")
	ErrInvalidVote     = errors.New("review: vote value must be 1 or -1")
	ErrUnknownCard     = errors.New("review: caption is not in this queue")
	ErrSessionClosed   = errors.New("review: session is closed")
	ErrReviewComplete  = errors.New("review: all cards have been reviewed")
	ErrSessionNotFound = errors.New("review: session not found")
	ErrForbidden       = errors.New("review: session belongs to another reviewer")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidVote), errors.Is(err, ErrUnknownCard):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionClosed), errors.Is(err, ErrReviewComplete):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
