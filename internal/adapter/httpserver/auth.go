package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/skillsync/skillsync/internal/domain"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom extracts the authenticated principal from the request context.
func PrincipalFrom(r *http.Request) (domain.Principal, bool) {
	p, ok := r.Context().Value(principalKey{}).(domain.Principal)
	return p, ok
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// Authenticate verifies the bearer token on every request and stores the
// resulting principal in the context. Requests without credentials get 401.
func Authenticate(verifier domain.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if authz == "" {
				writeError(w, r, fmt.Errorf("%w: authentication required", domain.ErrUnauthenticated), nil)
				return
			}
			token, ok := bearerToken(authz)
			if !ok {
				writeError(w, r, fmt.Errorf("%w: malformed authorization header", domain.ErrUnauthenticated), nil)
				return
			}
			p, err := verifier.Verify(r.Context(), token)
			if err != nil {
				writeError(w, r, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated), nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

// requirePrincipal fetches the principal or writes 401 and returns false.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := PrincipalFrom(r)
	if !ok {
		writeError(w, r, fmt.Errorf("%w: authentication required", domain.ErrUnauthenticated), nil)
		return domain.Principal{}, false
	}
	return p, true
}

// RequireRole gates a subtree to one role.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := requirePrincipal(w, r)
			if !ok {
				return
			}
			if p.Role != role {
				writeError(w, r, fmt.Errorf("%w: %s role required", domain.ErrForbidden, role), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
