package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenCodec mints and verifies access tokens and mints opaque refresh tokens.
type TokenCodec interface {
	IssueAccess(userID uuid.UUID, now time.Time) (string, error)
	VerifyAccess(token string, now time.Time) (uuid.UUID, error)
	IssueRefresh(now time.Time) (token string, expiresAt time.Time, err error)
	AccessTTL() time.Duration
}

// PasswordHasher hashes and verifies plaintext passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

// TokenPair is an access token together with its refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}
