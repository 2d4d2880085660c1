package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/regex"
)

// APIUser is the user of requests that presented the configured token.
var APIUser = models.User{ID: "api", Name: "API client"}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	m := regex.BearerToken.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Middleware signs in requests that carry "Authorization: Bearer <token>".
// Requests without a matching token pass through unauthenticated; it is up
// to the handler to require a user. An empty token signs nobody in.
func Middleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			got, ok := BearerToken(r.Header.Get("Authorization"))
			if ok && subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1 {
				u := APIUser
				r = r.WithContext(WithUser(r.Context(), &u))
			} else if r.Header.Get("Authorization") != "" {
				logger.Warn(r.Context(), "rejected bearer token", "path", r.URL.Path)
			}

			next.ServeHTTP(w, r)
		})
	}
}
