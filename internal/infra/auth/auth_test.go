package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(Config{JWTSecret: "test-secret", TokenTTL: time.Hour})
	require.NoError(t, err)
	return s
}

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("s3cret")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, "s3cret"))
	assert.Error(t, h.Compare(hash, "wrong"))
}

func TestLoginWithDefaultAdmin(t *testing.T) {
	s := newTestService(t)

	res, err := s.Login("Admin@TryAlma.ai ", "password")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, DefaultAdminEmail, res.User.Email)
	assert.Equal(t, RoleAdmin, res.User.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	claims, err := s.Authenticate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, DefaultAdminEmail, claims.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestService(t)

	_, err := s.Login("admin@tryalma.ai", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login("someone@tryalma.ai", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithConfiguredHash(t *testing.T) {
	hash, err := NewHasher(4).Hash("hunter2")
	require.NoError(t, err)

	s, err := NewService(Config{AdminEmail: "ops@example.com", PasswordHash: hash, JWTSecret: "k"})
	require.NoError(t, err)

	_, err = s.Login("ops@example.com", "hunter2")
	assert.NoError(t, err)
	_, err = s.Login("ops@example.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithoutSecretFails(t *testing.T) {
	s, err := NewService(Config{})
	require.NoError(t, err)

	_, err = s.Login(DefaultAdminEmail, DefaultAdminPassword)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateRejectsTamperedAndExpiredTokens(t *testing.T) {
	p := NewTokenProvider("secret-a", time.Minute)
	token, _, err := p.Issue(User{ID: "admin", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = NewTokenProvider("secret-b", time.Minute).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = p.Validate(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	p.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = p.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleAdmin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenProvider("secret", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateRequiresAdminRole(t *testing.T) {
	s := newTestService(t)
	token, _, err := s.tokens.Issue(User{ID: "u1", Role: "viewer"})
	require.NoError(t, err)

	_, err = s.Authenticate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
