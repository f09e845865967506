package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

func newTestAdapter() *Adapter {
	return NewAdapterWithCost("test-secret", bcrypt.MinCost)
}

func testClaims(ttl time.Duration) *domain.TokenClaims {
	now := time.Now()
	return &domain.TokenClaims{
		UserID:    "user-1",
		Username:  "reader",
		Role:      domain.RoleMember,
		SessionID: "session-1",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

func TestNewAdapter(t *testing.T) {
	a := NewAdapter("secret")
	assert.Equal(t, bcrypt.DefaultCost, a.bcryptCost)
	assert.Equal(t, []byte("secret"), a.jwtSecret)
}

func TestHashAndVerifyPassword(t *testing.T) {
	a := newTestAdapter()

	hash, err := a.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	other, err := a.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salted hashes differ")

	assert.True(t, a.VerifyPassword("hunter22", hash))
	assert.False(t, a.VerifyPassword("hunter23", hash))
	assert.False(t, a.VerifyPassword("hunter22", "not-a-hash"))
}

func TestTokenRoundTrip(t *testing.T) {
	a := newTestAdapter()

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleMember} {
		t.Run(string(role), func(t *testing.T) {
			claims := testClaims(time.Hour)
			claims.Role = role

			token, err := a.GenerateToken(claims)
			require.NoError(t, err)

			got, err := a.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, claims, got)
		})
	}
}

func TestParseToken_Expired(t *testing.T) {
	a := newTestAdapter()
	token, err := a.GenerateToken(testClaims(-time.Minute))
	require.NoError(t, err)

	_, err = a.ParseToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestParseToken_Invalid(t *testing.T) {
	a := newTestAdapter()
	valid, err := a.GenerateToken(testClaims(time.Hour))
	require.NoError(t, err)

	wrongSecret, err := NewAdapterWithCost("other", bcrypt.MinCost).GenerateToken(testClaims(time.Hour))
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"tampered":     valid + "x",
		"wrong secret": wrongSecret,
		"wrong issuer": foreign,
		"no expiry":    noExpiry,
		"alg none":     unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.ParseToken(token)
			assert.ErrorIs(t, err, domain.ErrTokenInvalid)
		})
	}
}
