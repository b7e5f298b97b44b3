package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/identity-server/internal/model"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec("secret", "identity-test", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return c
}

func TestCodec_AccessToken_Roundtrip(t *testing.T) {
	c := newTestCodec(t)
	u := uuid.New()

	access, err := c.IssueAccess(u, testNow)
	require.NoError(t, err)

	got, err := c.VerifyAccess(access, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestCodec_VerifyAccess_Expired(t *testing.T) {
	c := newTestCodec(t)

	access, err := c.IssueAccess(uuid.New(), testNow)
	require.NoError(t, err)

	_, err = c.VerifyAccess(access, testNow.Add(15*time.Minute))
	assert.ErrorIs(t, err, model.ErrTokenExpired)

	_, err = c.VerifyAccess(access, testNow.Add(time.Hour))
	assert.ErrorIs(t, err, model.ErrTokenExpired)

	_, err = c.VerifyAccess(access, testNow.Add(15*time.Minute-time.Second))
	assert.NoError(t, err)
}

func TestCodec_VerifyAccess_Invalid(t *testing.T) {
	c := newTestCodec(t)
	u := uuid.New()

	access, err := c.IssueAccess(u, testNow)
	require.NoError(t, err)

	other, err := NewCodec("other-secret", "identity-test", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	foreign, err := other.IssueAccess(u, testNow)
	require.NoError(t, err)

	otherIssuer, err := NewCodec("secret", "someone-else", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := otherIssuer.IssueAccess(u, testNow)
	require.NoError(t, err)

	parts := strings.Split(access, ".")
	require.Len(t, parts, 3)
	tamperedPayload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"` + uuid.NewString() + `","exp":9999999999,"typ":"access","iss":"identity-test"}`))
	tampered := parts[0] + "." + tamperedPayload + "." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.String(),
			Issuer:    "identity-test",
			ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
		},
		TokenType: typeAccess,
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	wrongType := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.String(),
			Issuer:    "identity-test",
			ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
		},
		TokenType: "refresh",
	})
	wrongTypeString, err := wrongType.SignedString([]byte("secret"))
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: u.String(), Issuer: "identity-test"},
		TokenType:        typeAccess,
	})
	noExpString, err := noExp.SignedString([]byte("secret"))
	require.NoError(t, err)

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    "identity-test",
			ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
		},
		TokenType: typeAccess,
	})
	badSubjectString, err := badSubject.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "foreign secret", token: foreign},
		{name: "wrong issuer", token: wrongIssuer},
		{name: "tampered payload", token: tampered},
		{name: "alg none", token: unsigned},
		{name: "wrong type", token: wrongTypeString},
		{name: "missing exp", token: noExpString},
		{name: "bad subject", token: badSubjectString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.VerifyAccess(tt.token, testNow)
			assert.ErrorIs(t, err, model.ErrTokenInvalid)
			assert.NotErrorIs(t, err, model.ErrTokenExpired)
		})
	}
}

func TestCodec_IssueRefresh(t *testing.T) {
	c := newTestCodec(t)

	first, expiresAt, err := c.IssueRefresh(testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(24*time.Hour), expiresAt)

	raw, err := base64.RawURLEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	second, _, err := c.IssueRefresh(testNow)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashRefresh(t *testing.T) {
	assert.Equal(t, HashRefresh("abc"), HashRefresh("abc"))
	assert.NotEqual(t, HashRefresh("abc"), HashRefresh("abd"))
	assert.NotContains(t, HashRefresh("abc"), "abc")
}

func TestNewCodec_Validation(t *testing.T) {
	_, err := NewCodec("", "i", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewCodec("s", "i", 0, time.Hour)
	assert.Error(t, err)

	c, err := NewCodec("s", "i", time.Minute, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, c.AccessTTL())
}
