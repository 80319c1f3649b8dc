package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mwhitson/banter/internal/config"
)

// setRequiredEnv satisfies the fields that have no defaults so Load can
// finalize without a config file on disk.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BANTER_STORAGE_CONNECTION_STRING", "DefaultEndpointsProtocol=https;AccountName=bantertest;AccountKey=dGVzdC1rZXk=;EndpointSuffix=core.windows.net")
	t.Setenv("BANTER_IDENTITY_ISSUER", "https://login.test/tenant/v2.0")
	t.Setenv("BANTER_IDENTITY_AUDIENCE", "api://banter")
}

func TestLoad(t *testing.T) {
	t.Run("defaults without a config file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		setRequiredEnv(t)

		cfg, err := config.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if got := cfg.Server.Addr(); got != "0.0.0.0:8080" {
			t.Errorf("Server.Addr() = %q, want 0.0.0.0:8080", got)
		}
		if cfg.ShutdownTimeoutDuration() != 30*time.Second {
			t.Errorf("ShutdownTimeoutDuration() = %v, want 30s", cfg.ShutdownTimeoutDuration())
		}
		if cfg.Version != "0.1.0" {
			t.Errorf("Version = %q, want 0.1.0", cfg.Version)
		}
		if cfg.Review.AutoAdvanceDuration() != 800*time.Millisecond {
			t.Errorf("Review.AutoAdvanceDuration() = %v, want 800ms", cfg.Review.AutoAdvanceDuration())
		}
		if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
			t.Errorf("Database defaults = %s:%d, want localhost:5432", cfg.Database.Host, cfg.Database.Port)
		}
		if cfg.API.BasePath != "/api" {
			t.Errorf("API.BasePath = %q, want /api", cfg.API.BasePath)
		}
	})

	t.Run("config file values take effect", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		setRequiredEnv(t)

		base := `
shutdown_timeout = "45s"
version = "1.2.3"

[server]
port = 9090

[review]
auto_advance_delay = "250ms"
queue_limit = 10
`
		if err := os.WriteFile(filepath.Join(dir, config.BaseConfigFile), []byte(base), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, err := config.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.ShutdownTimeout != "45s" {
			t.Errorf("ShutdownTimeout = %q, want 45s", cfg.ShutdownTimeout)
		}
		if cfg.Version != "1.2.3" {
			t.Errorf("Version = %q, want 1.2.3", cfg.Version)
		}
		if cfg.Server.Port != 9090 {
			t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
		}
		if cfg.Review.AutoAdvanceDuration() != 250*time.Millisecond {
			t.Errorf("Review.AutoAdvanceDuration() = %v, want 250ms", cfg.Review.AutoAdvanceDuration())
		}
		if cfg.Review.QueueLimit != 10 {
			t.Errorf("Review.QueueLimit = %d, want 10", cfg.Review.QueueLimit)
		}
	})

	t.Run("environment overlay wins over base", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		setRequiredEnv(t)
		t.Setenv("BANTER_ENV", "test")

		base := `version = "1.0.0"

[server]
port = 9090
`
		overlay := `version = "1.0.0-test"

[server]
port = 9091
`
		if err := os.WriteFile(filepath.Join(dir, config.BaseConfigFile), []byte(base), 0o644); err != nil {
			t.Fatalf("write base: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "config.test.toml"), []byte(overlay), 0o644); err != nil {
			t.Fatalf("write overlay: %v", err)
		}

		cfg, err := config.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Version != "1.0.0-test" {
			t.Errorf("Version = %q, want 1.0.0-test", cfg.Version)
		}
		if cfg.Server.Port != 9091 {
			t.Errorf("Server.Port = %d, want 9091", cfg.Server.Port)
		}
	})

	t.Run("environment variables win over files", func(t *testing.T) {
		t.Chdir(t.TempDir())
		setRequiredEnv(t)
		t.Setenv("BANTER_SHUTDOWN_TIMEOUT", "90s")
		t.Setenv("BANTER_REVIEW_AUTO_ADVANCE_DELAY", "1s")

		cfg, err := config.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.ShutdownTimeoutDuration() != 90*time.Second {
			t.Errorf("ShutdownTimeoutDuration() = %v, want 90s", cfg.ShutdownTimeoutDuration())
		}
		if cfg.Review.AutoAdvanceDuration() != time.Second {
			t.Errorf("Review.AutoAdvanceDuration() = %v, want 1s", cfg.Review.AutoAdvanceDuration())
		}
	})

	t.Run("missing storage connection string fails", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("BANTER_IDENTITY_ISSUER", "https://login.test/tenant/v2.0")
		t.Setenv("BANTER_IDENTITY_AUDIENCE", "api://banter")

		if _, err := config.Load(); err == nil {
			t.Error("Load() error = nil without storage connection string")
		}
	})

	t.Run("invalid shutdown timeout fails", func(t *testing.T) {
		t.Chdir(t.TempDir())
		setRequiredEnv(t)
		t.Setenv("BANTER_SHUTDOWN_TIMEOUT", "soon")

		if _, err := config.Load(); err == nil {
			t.Error("Load() error = nil for invalid shutdown_timeout")
		}
	})
}

func TestMerge(t *testing.T) {
	base := &config.Config{
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
	base.Server.Host = "0.0.0.0"
	base.Server.Port = 8080

	overlay := &config.Config{Version: "0.2.0"}
	overlay.Server.Port = 8443

	base.Merge(overlay)

	if base.Version != "0.2.0" {
		t.Errorf("Version = %q, want 0.2.0", base.Version)
	}
	if base.ShutdownTimeout != "30s" {
		t.Errorf("ShutdownTimeout = %q, zero overlay field should not overwrite", base.ShutdownTimeout)
	}
	if base.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, zero overlay field should not overwrite", base.Server.Host)
	}
	if base.Server.Port != 8443 {
		t.Errorf("Server.Port = %d, want 8443", base.Server.Port)
	}
}
