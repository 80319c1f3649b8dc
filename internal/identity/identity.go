// Package identity resolves the calling identity from OIDC bearer tokens.
// It is the boundary to the external session provider: the rest of the
// service only ever sees an opaque profile ID.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/mwhitson/banter/pkg/lifecycle"
)

// Provider verifies raw bearer tokens and resolves them to profile IDs.
type Provider interface {
	// Start registers a startup hook that performs OIDC issuer discovery.
	Start(lc *lifecycle.Coordinator) error
	// Verify validates a raw bearer token and returns the subject profile ID.
	Verify(ctx context.Context, rawToken string) (string, error)
}

type oidcProvider struct {
	cfg    *Config
	logger *slog.Logger

	mu       sync.RWMutex
	verifier *oidc.IDTokenVerifier
}

// New creates an OIDC identity provider. Issuer discovery is deferred to
// Start so that construction never blocks on the network.
func New(cfg *Config, logger *slog.Logger) Provider {
	return &oidcProvider{
		cfg:    cfg,
		logger: logger.With("system", "identity"),
	}
}

func (p *oidcProvider) Start(lc *lifecycle.Coordinator) error {
	p.logger.Info("starting identity provider", "issuer", p.cfg.Issuer)

	lc.OnStartup(func() {
		provider, err := oidc.NewProvider(lc.Context(), p.cfg.Issuer)
		if err != nil {
			p.logger.Error("oidc discovery failed", "issuer", p.cfg.Issuer, "error", err)
			return
		}

		verifier := provider.Verifier(&oidc.Config{ClientID: p.cfg.Audience})

		p.mu.Lock()
		p.verifier = verifier
		p.mu.Unlock()

		p.logger.Info("identity provider ready")
	})

	return nil
}

func (p *oidcProvider) Verify(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", ErrMissingToken
	}

	p.mu.RLock()
	verifier := p.verifier
	p.mu.RUnlock()

	if verifier == nil {
		return "", ErrNotReady
	}

	token, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if token.Subject == "" {
		return "", ErrInvalidToken
	}

	return token.Subject, nil
}
