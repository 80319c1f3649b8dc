package middleware

import "net/http"

// MaxBytes returns middleware that caps each request body at limit bytes.
// Handlers reading past the cap get an *http.MaxBytesError from the body.
// A limit of zero or less disables the cap.
func MaxBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
