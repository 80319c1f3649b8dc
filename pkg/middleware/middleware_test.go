package middleware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mwhitson/banter/pkg/middleware"
)

func corsRequest(t *testing.T, cfg *middleware.CORSConfig, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	called := false
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(method, "/api/images", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if method == http.MethodOptions && called {
		t.Error("preflight request should not reach the handler")
	}
	return rec
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled: true,
		Origins: []string{"https://app.test"},
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("config finalize: %v", err)
	}

	t.Run("allowed origin gets headers", func(t *testing.T) {
		rec := corsRequest(t, cfg, http.MethodGet, "https://app.test")

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.test" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
			t.Error("Allow-Methods missing")
		}
		if got := rec.Header().Get("Access-Control-Max-Age"); got != "3600" {
			t.Errorf("Max-Age = %q, want 3600", got)
		}
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		rec := corsRequest(t, cfg, http.MethodGet, "https://evil.test")
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		rec := corsRequest(t, cfg, http.MethodOptions, "https://app.test")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("disabled config passes through", func(t *testing.T) {
		disabled := &middleware.CORSConfig{Enabled: false}
		rec := corsRequest(t, disabled, http.MethodGet, "https://app.test")

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, handler should have run", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("credentials flag", func(t *testing.T) {
		withCreds := &middleware.CORSConfig{
			Enabled:          true,
			Origins:          []string{"https://app.test"},
			AllowCredentials: true,
		}
		withCreds.Finalize(nil)

		rec := corsRequest(t, withCreds, http.MethodGet, "https://app.test")
		if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Allow-Credentials = %q, want true", got)
		}
	})
}

func TestMaxBytes(t *testing.T) {
	handler := middleware.MaxBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			var tooLarge *http.MaxBytesError
			if !errors.As(err, &tooLarge) {
				t.Errorf("body read error = %v, want MaxBytesError", err)
			}
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("small body passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/images", strings.NewReader("tiny")))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("oversized body is cut off", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/images", strings.NewReader("well over the eight byte cap")))
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
	})

	t.Run("zero limit disables the cap", func(t *testing.T) {
		open := middleware.MaxBytes(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := io.ReadAll(r.Body); err != nil {
				t.Errorf("body read error = %v, want none", err)
			}
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		open.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/images", strings.NewReader("any length goes through")))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestCORSConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := middleware.CORSConfig{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}

		if len(cfg.AllowedMethods) == 0 || len(cfg.AllowedHeaders) == 0 {
			t.Error("Finalize() left methods or headers empty")
		}
		if cfg.MaxAge != 3600 {
			t.Errorf("MaxAge = %d, want 3600", cfg.MaxAge)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_CORS_ENABLED", "true")
		t.Setenv("TEST_CORS_ORIGINS", "https://a.test, https://b.test,")

		cfg := middleware.CORSConfig{}
		err := cfg.Finalize(&middleware.CORSEnv{
			Enabled: "TEST_CORS_ENABLED",
			Origins: "TEST_CORS_ORIGINS",
		})
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}

		if !cfg.Enabled {
			t.Error("Enabled = false, want env override")
		}
		if len(cfg.Origins) != 2 || cfg.Origins[1] != "https://b.test" {
			t.Errorf("Origins = %v, want trimmed two-element list", cfg.Origins)
		}
	})
}
