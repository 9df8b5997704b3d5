// Package identity verifies bearer tokens issued by the external identity
// provider and maps them to principals.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skillsync/skillsync/internal/domain"
)

// Verifier validates HS256-signed tokens against a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a Verifier; the secret must be non-empty.
func NewVerifier(secret string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret not configured")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Verify parses and validates the token, returning the principal it names.
// Tokens with a missing subject or an unknown role are rejected.
func (v *Verifier) Verify(_ domain.Context, token string) (domain.Principal, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	c := &claims{}
	parsed, err := parser.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if !parsed.Valid {
		return domain.Principal{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	if c.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: subject claim required", domain.ErrUnauthenticated)
	}
	role := domain.Role(c.Role)
	switch role {
	case domain.RoleClient, domain.RoleDeveloper, domain.RoleAdmin:
	default:
		return domain.Principal{}, fmt.Errorf("%w: unknown role %q", domain.ErrUnauthenticated, c.Role)
	}
	return domain.Principal{ID: c.Subject, Role: role}, nil
}
