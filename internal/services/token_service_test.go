package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	require.ErrorIs(t, err, ErrEmptyTokenSecret)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService("secret", 7*24*time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken("user-1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	svc := &jwtTokenService{secret: []byte("secret"), expiry: time.Hour, now: func() time.Time { return issued }}

	token, err := svc.GenerateToken("user-1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenService("secret-a", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenService("secret-b", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	svc, err := NewTokenService("secret", time.Hour)
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(hs512)
	require.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsMissingSubjectOrExpiry(t *testing.T) {
	svc, err := NewTokenService("secret", time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(noSubject)
	require.ErrorIs(t, err, ErrInvalidToken)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(noExpiry)
	require.ErrorIs(t, err, ErrInvalidToken)
}
