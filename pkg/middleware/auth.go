package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// TokenValidator is the subset of *auth.TokenIssuer the middleware needs.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Auth requires a valid bearer token and stores the identity in the request
// context, where ctx.Context.UserID and auth.IdentityFrom can read it.
func Auth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				response.Unauthorized(w, "missing authorization header")
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				response.Unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), claims.Identity())))
		})
	}
}

// OptionalAuth attaches the identity when a valid bearer token is present
// and lets every request through otherwise.
func OptionalAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearer(r.Header.Get("Authorization")); ok {
				if claims, err := tokens.Validate(token); err == nil {
					r = r.WithContext(auth.WithIdentity(r.Context(), claims.Identity()))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
