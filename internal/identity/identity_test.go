package identity_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mwhitson/banter/internal/identity"
	"github.com/mwhitson/banter/pkg/lifecycle"
)

type fakeProvider struct {
	subject string
	err     error
}

func (f *fakeProvider) Start(*lifecycle.Coordinator) error {
	return nil
}

func (f *fakeProvider) Verify(_ context.Context, rawToken string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if rawToken == "" {
		return "", identity.ErrMissingToken
	}
	return f.subject, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMiddleware(t *testing.T) {
	t.Run("valid bearer reaches the handler with profile", func(t *testing.T) {
		var gotProfile string
		handler := identity.Middleware(&fakeProvider{subject: "profile-1"}, discard())(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotProfile, _ = identity.FromContext(r.Context())
			}))

		req := httptest.NewRequest("GET", "/votes", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if gotProfile != "profile-1" {
			t.Errorf("profile = %q, want profile-1", gotProfile)
		}
	})

	t.Run("missing token rejected before handler", func(t *testing.T) {
		called := false
		handler := identity.Middleware(&fakeProvider{subject: "profile-1"}, discard())(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

		req := httptest.NewRequest("GET", "/votes", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if called {
			t.Error("handler ran without identity")
		}
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		handler := identity.Middleware(&fakeProvider{err: identity.ErrInvalidToken}, discard())(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest("GET", "/votes", nil)
		req.Header.Set("Authorization", "Bearer expired")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("provider not ready yields 503", func(t *testing.T) {
		handler := identity.Middleware(&fakeProvider{err: identity.ErrNotReady}, discard())(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest("GET", "/votes", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("non-bearer scheme treated as missing", func(t *testing.T) {
		handler := identity.Middleware(&fakeProvider{subject: "profile-1"}, discard())(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest("GET", "/votes", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing", identity.ErrMissingToken, http.StatusUnauthorized},
		{"invalid", identity.ErrInvalidToken, http.StatusUnauthorized},
		{"not ready", identity.ErrNotReady, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := identity.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("issuer required", func(t *testing.T) {
		var cfg identity.Config
		if err := cfg.Finalize(nil); err == nil {
			t.Error("Finalize() error = nil without issuer")
		}
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("TEST_IDENTITY_ISSUER", "https://issuer.test")
		t.Setenv("TEST_IDENTITY_AUDIENCE", "banter")

		var cfg identity.Config
		env := &identity.Env{Issuer: "TEST_IDENTITY_ISSUER", Audience: "TEST_IDENTITY_AUDIENCE"}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if cfg.Issuer != "https://issuer.test" {
			t.Errorf("Issuer = %s", cfg.Issuer)
		}
		if cfg.Audience != "banter" {
			t.Errorf("Audience = %s", cfg.Audience)
		}
	})
}
