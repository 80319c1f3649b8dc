package storage_test

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/mwhitson/banter/pkg/storage"
)

const testConnectionString = "DefaultEndpointsProtocol=https;AccountName=bantertest;AccountKey=dGVzdC1rZXk=;EndpointSuffix=core.windows.net"

func TestParseConnectionString(t *testing.T) {
	t.Run("derives blob endpoint", func(t *testing.T) {
		account, err := storage.ParseConnectionString(testConnectionString)
		if err != nil {
			t.Fatalf("ParseConnectionString() error = %v", err)
		}

		if account.Name != "bantertest" {
			t.Errorf("Name = %q, want bantertest", account.Name)
		}
		if account.Key != "dGVzdC1rZXk=" {
			t.Errorf("Key = %q, base64 padding must survive parsing", account.Key)
		}
		if account.BlobEndpoint != "https://bantertest.blob.core.windows.net" {
			t.Errorf("BlobEndpoint = %q", account.BlobEndpoint)
		}
	})

	t.Run("explicit blob endpoint wins", func(t *testing.T) {
		conn := "AccountName=devstoreaccount1;AccountKey=a2V5;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1/"
		account, err := storage.ParseConnectionString(conn)
		if err != nil {
			t.Fatalf("ParseConnectionString() error = %v", err)
		}
		if account.BlobEndpoint != "http://127.0.0.1:10000/devstoreaccount1" {
			t.Errorf("BlobEndpoint = %q, trailing slash should be trimmed", account.BlobEndpoint)
		}
	})

	t.Run("missing account name", func(t *testing.T) {
		if _, err := storage.ParseConnectionString("AccountKey=a2V5"); err == nil {
			t.Error("ParseConnectionString() error = nil without AccountName")
		}
	})

	t.Run("missing account key", func(t *testing.T) {
		if _, err := storage.ParseConnectionString("AccountName=test"); err == nil {
			t.Error("ParseConnectionString() error = nil without AccountKey")
		}
	})

	t.Run("malformed segment", func(t *testing.T) {
		if _, err := storage.ParseConnectionString("AccountName=test;garbage"); err == nil {
			t.Error("ParseConnectionString() error = nil for malformed segment")
		}
	})
}

func newSystem(t *testing.T, publicBaseURL string) storage.System {
	t.Helper()

	cfg := storage.Config{
		ConnectionString: testConnectionString,
		PublicBaseURL:    publicBaseURL,
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("config finalize: %v", err)
	}

	sys, err := storage.New(&cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys
}

func TestPublicURL(t *testing.T) {
	t.Run("configured base", func(t *testing.T) {
		sys := newSystem(t, "https://cdn.test/")
		if got := sys.PublicURL("images/a.png"); got != "https://cdn.test/images/a.png" {
			t.Errorf("PublicURL() = %q", got)
		}
	})

	t.Run("falls back to blob endpoint", func(t *testing.T) {
		sys := newSystem(t, "")
		want := "https://bantertest.blob.core.windows.net/images/images/a.png"
		if got := sys.PublicURL("images/a.png"); got != want {
			t.Errorf("PublicURL() = %q, want %q", got, want)
		}
	})
}

func TestKeyFromPublicURL(t *testing.T) {
	sys := newSystem(t, "https://cdn.test")

	t.Run("round trips through PublicURL", func(t *testing.T) {
		key := "images/1234.png"
		got, err := sys.KeyFromPublicURL(sys.PublicURL(key))
		if err != nil {
			t.Fatalf("KeyFromPublicURL() error = %v", err)
		}
		if got != key {
			t.Errorf("KeyFromPublicURL() = %q, want %q", got, key)
		}
	})

	t.Run("foreign url rejected", func(t *testing.T) {
		_, err := sys.KeyFromPublicURL("https://elsewhere.test/images/a.png")
		if !errors.Is(err, storage.ErrForeignURL) {
			t.Errorf("KeyFromPublicURL() error = %v, want ErrForeignURL", err)
		}
	})

	t.Run("traversal key rejected", func(t *testing.T) {
		_, err := sys.KeyFromPublicURL("https://cdn.test/images/../secrets")
		if !errors.Is(err, storage.ErrInvalidKey) {
			t.Errorf("KeyFromPublicURL() error = %v, want ErrInvalidKey", err)
		}
	})
}

func TestPresign(t *testing.T) {
	sys := newSystem(t, "https://cdn.test")
	ctx := t.Context()

	t.Run("issues sas upload url", func(t *testing.T) {
		upload, err := sys.Presign(ctx, "image/png")
		if err != nil {
			t.Fatalf("Presign() error = %v", err)
		}

		if !strings.HasSuffix(upload.Key, ".png") {
			t.Errorf("Key = %q, want .png extension", upload.Key)
		}
		if !strings.HasPrefix(upload.Key, "images/") {
			t.Errorf("Key = %q, want images/ prefix", upload.Key)
		}
		if !strings.Contains(upload.UploadURL, "sig=") {
			t.Errorf("UploadURL = %q, want SAS signature", upload.UploadURL)
		}
		if want := fmt.Sprintf("https://cdn.test/%s", upload.Key); upload.PublicURL != want {
			t.Errorf("PublicURL = %q, want %q", upload.PublicURL, want)
		}
		if upload.ExpiresAt.IsZero() {
			t.Error("ExpiresAt is zero")
		}
	})

	t.Run("normalizes content type case", func(t *testing.T) {
		upload, err := sys.Presign(ctx, " Image/JPEG ")
		if err != nil {
			t.Fatalf("Presign() error = %v", err)
		}
		if !strings.HasSuffix(upload.Key, ".jpg") {
			t.Errorf("Key = %q, want .jpg extension", upload.Key)
		}
	})

	t.Run("unsupported content type", func(t *testing.T) {
		_, err := sys.Presign(ctx, "application/pdf")
		if !errors.Is(err, storage.ErrUnsupportedContentType) {
			t.Errorf("Presign() error = %v, want ErrUnsupportedContentType", err)
		}
	})
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"empty key", storage.ErrEmptyKey, http.StatusBadRequest},
		{"invalid key", storage.ErrInvalidKey, http.StatusBadRequest},
		{"unsupported content type", storage.ErrUnsupportedContentType, http.StatusBadRequest},
		{"foreign url", storage.ErrForeignURL, http.StatusBadRequest},
		{"wrapped", fmt.Errorf("lookup: %w", storage.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
