package identity

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mwhitson/banter/pkg/handlers"
)

type contextKey struct{}

var profileKey contextKey

// FromContext returns the profile ID resolved by the Middleware, if any.
func FromContext(ctx context.Context) (string, bool) {
	profileID, ok := ctx.Value(profileKey).(string)
	return profileID, ok
}

// WithProfile returns a context carrying the given profile ID.
// Exposed for handler tests that bypass the middleware.
func WithProfile(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, profileKey, profileID)
}

// Middleware returns HTTP middleware that requires a valid bearer token,
// resolves it through the provider, and stores the profile ID in the
// request context. Requests without a valid identity are rejected before
// reaching any handler.
func Middleware(provider Provider, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("middleware", "identity")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken := extractBearer(r)

			profileID, err := provider.Verify(r.Context(), rawToken)
			if err != nil {
				handlers.RespondError(w, logger, MapHTTPStatus(err), err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profileID)))
		})
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
