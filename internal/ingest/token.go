package ingest

import (
	"context"
	"errors"
)

// ErrNoCredential indicates no bearer credential is available. The pipeline
// checks for a credential before its first stage runs.
var ErrNoCredential = errors.New("ingest: no bearer credential available")

// TokenSource yields the bearer credential attached to API calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for a fixed credential. The empty string
// yields ErrNoCredential.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", ErrNoCredential
	}
	return string(t), nil
}
