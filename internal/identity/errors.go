package identity

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingToken indicates the request carried no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken indicates the bearer token failed verification.
	ErrInvalidToken = errors.New("invalid bearer token")
	// ErrNotReady indicates issuer discovery has not completed yet.
	ErrNotReady = errors.New("identity provider not ready")
)

// MapHTTPStatus maps identity errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrMissingToken) || errors.Is(err, ErrInvalidToken) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrNotReady) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
