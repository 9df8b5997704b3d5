package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsync/skillsync/internal/adapter/identity"
	"github.com/skillsync/skillsync/internal/domain"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerifier(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v, err := identity.NewVerifier(testSecret)
	require.NoError(t, err)

	t.Run("accepts a valid token", func(t *testing.T) {
		t.Parallel()
		tok := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "user-1",
			"role": "client",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		p, err := v.Verify(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, "user-1", p.ID)
		assert.Equal(t, domain.RoleClient, p.Role)
	})

	t.Run("rejects a wrong signature", func(t *testing.T) {
		t.Parallel()
		tok := signToken(t, "other-secret", jwt.MapClaims{"sub": "user-1", "role": "client"})
		_, err := v.Verify(ctx, tok)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		t.Parallel()
		tok := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "user-1",
			"role": "client",
			"exp":  time.Now().Add(-time.Hour).Unix(),
		})
		_, err := v.Verify(ctx, tok)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("rejects a missing subject", func(t *testing.T) {
		t.Parallel()
		tok := signToken(t, testSecret, jwt.MapClaims{"role": "client"})
		_, err := v.Verify(ctx, tok)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		t.Parallel()
		tok := signToken(t, testSecret, jwt.MapClaims{"sub": "user-1", "role": "superuser"})
		_, err := v.Verify(ctx, tok)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("empty secret is refused at construction", func(t *testing.T) {
		t.Parallel()
		_, err := identity.NewVerifier("  ")
		assert.Error(t, err)
	})
}
