// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/mwhitson/banter/internal/config"
	"github.com/mwhitson/banter/internal/identity"
	"github.com/mwhitson/banter/internal/infrastructure"
	"github.com/mwhitson/banter/pkg/middleware"
	"github.com/mwhitson/banter/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Every route under the API base path requires an authenticated caller.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.MaxBytes(cfg.API.MaxUploadSizeBytes()))
	m.Use(identity.Middleware(runtime.Identity, runtime.Logger))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
