package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
)

// APIKey guards the delivery API with a static key sent in X-API-Key or as a bearer token.
// An empty key rejects every request.
func (m *Middleware) APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-API-Key")
			if got == "" {
				got = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}

			if key == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				m.log.Warn(wrap.WithAction(r.Context(), "api_key_check"), "rejected request with invalid api key", "path", r.URL.Path)
				errorResponse(w, http.StatusUnauthorized, "Invalid or missing API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
