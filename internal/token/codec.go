package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/model"
)

var _ model.TokenCodec = (*Codec)(nil)

const (
	typeAccess = "access"

	refreshTokenBytes = 32
)

// Claims represents access token claims.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// Codec signs access tokens with HMAC-SHA256 and mints opaque refresh tokens.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec creates a Codec. The secret is copied and never exposed again.
func NewCodec(secret string, issuer string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("signing secret must not be empty")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Codec{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL returns the lifetime of access tokens.
func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}

// IssueAccess creates an access token for userID that expires at now+accessTTL.
func (c *Codec) IssueAccess(userID uuid.UUID, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
		TokenType: typeAccess,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// VerifyAccess validates the signature and expiry of an access token at now.
// It returns model.ErrTokenExpired when now is at or past the expiry and
// model.ErrTokenInvalid for any other defect.
func (c *Codec) VerifyAccess(tokenString string, now time.Time) (uuid.UUID, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%w: %v", model.ErrTokenExpired, err)
		}
		return uuid.Nil, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}
	if claims.TokenType != typeAccess {
		return uuid.Nil, fmt.Errorf("%w: token type mismatch: %s", model.ErrTokenInvalid, claims.TokenType)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", model.ErrTokenInvalid)
	}

	return userID, nil
}

// IssueRefresh creates an opaque refresh token with 256 bits of entropy.
func (c *Codec) IssueRefresh(now time.Time) (string, time.Time, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), now.Add(c.refreshTTL), nil
}

// HashRefresh returns the storage key of a refresh token.
func HashRefresh(token string) string {
	h := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(h[:])
}
