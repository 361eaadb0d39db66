package content_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-content"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaims(t *testing.T) {
	now := time.Now()
	claims := &content.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UID:       "user-123",
		UserEmail: "admin@example.com",
		UserRole:  "admin",
	}

	t.Run("accessors", func(t *testing.T) {
		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, "user-123", claims.UserID())
		assert.Equal(t, "admin@example.com", claims.Email())
		assert.Equal(t, "admin", claims.Role())
		assert.WithinDuration(t, now, claims.IssuedAt(), time.Second)
		assert.WithinDuration(t, now.Add(time.Hour), claims.Expires(), time.Second)
	})

	t.Run("UserID falls back to subject", func(t *testing.T) {
		c := &content.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-only"},
		}
		assert.Equal(t, "sub-only", c.UserID())
	})

	t.Run("HasRole is exact membership", func(t *testing.T) {
		assert.True(t, claims.HasRole("admin"))
		assert.False(t, claims.HasRole("user"))
		assert.False(t, claims.HasRole(""))

		empty := &content.JWTClaims{}
		assert.False(t, empty.HasRole("admin"))
	})

	t.Run("zero timestamps", func(t *testing.T) {
		c := &content.JWTClaims{}
		assert.True(t, c.Expires().IsZero())
		assert.True(t, c.IssuedAt().IsZero())
	})
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		required []string
		expected bool
	}{
		{
			name:     "empty required set allows anyone",
			role:     "user",
			required: nil,
			expected: true,
		},
		{
			name:     "member role passes",
			role:     "admin",
			required: []string{"admin", "editor"},
			expected: true,
		},
		{
			name:     "non member role is denied",
			role:     "user",
			required: []string{"admin"},
			expected: false,
		},
		{
			name:     "empty role against required set is denied",
			role:     "",
			required: []string{"admin"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, content.Authorize(tt.role, tt.required))
		})
	}
}

func TestAuthorizeClaims(t *testing.T) {
	claims := &content.JWTClaims{UserRole: "admin"}

	assert.True(t, content.AuthorizeClaims(claims, []string{"admin"}))
	assert.False(t, content.AuthorizeClaims(claims, []string{"editor"}))
	assert.True(t, content.AuthorizeClaims(claims, nil))
	assert.False(t, content.AuthorizeClaims(nil, []string{"admin"}))
}
