package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const contextKeyPrincipal contextKey = "auth.principal"

// Principal is the authenticated identity AuthMiddleware attaches to a
// request's context once Verifier accepts the token.
type Principal interface {
	Subject() string
	Role() string
}

// Verifier resolves a bearer token into its Principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// Extractor pulls the raw token out of an inbound request. Different
// routes accept the token differently (header-only, header-or-query), so
// AuthMiddleware takes the strategy as a parameter instead of hard-coding
// one.
type Extractor func(r *http.Request) (string, error)

// BearerExtractor reads the token from a "Bearer <token>" Authorization
// header, rejecting any other scheme or a missing header.
func BearerExtractor(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

// AuthMiddleware rejects the request before next runs unless extract finds
// a token that verifier accepts; on success the resolved Principal is
// attached to the request context for GetPrincipal to retrieve downstream.
func AuthMiddleware(verifier Verifier, extract Extractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extract(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			principal, err := verifier.Verify(r.Context(), token)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal returns the Principal AuthMiddleware attached to ctx, if
// any. Callers that need more than Subject()/Role() type-assert the
// Principal down to their concrete type.
func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKeyPrincipal).(Principal)
	return p, ok
}

// GetSubject returns the subject of the Principal attached to ctx, or ""
// if none is present.
func GetSubject(ctx context.Context) string {
	p, ok := GetPrincipal(ctx)
	if !ok {
		return ""
	}
	return p.Subject()
}

// GetRole returns the role of the Principal attached to ctx, or "" if
// none is present.
func GetRole(ctx context.Context) string {
	p, ok := GetPrincipal(ctx)
	if !ok {
		return ""
	}
	return p.Role()
}
