package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists refresh token records keyed by token hash.
//
// Rotate must revoke the record identified by oldHash and insert next in one
// atomic step. It fills next.UserID and next.RotatedFrom from the old record
// and returns the stored successor. When the old record is missing it returns
// ErrNotFound, when revoked ErrTokenRevoked, when expired ErrTokenExpired.
//
// RevokeByHash returns ErrNotFound for an unknown hash and nil when the
// record is already revoked.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	GetByHash(ctx context.Context, hash string) (RefreshToken, error)
	Rotate(ctx context.Context, oldHash string, next RefreshToken, now time.Time) (RefreshToken, error)
	RevokeByHash(ctx context.Context, hash string, now time.Time) error
}

// RefreshTokenState is the lifecycle state of a refresh token record.
type RefreshTokenState int

const (
	RefreshTokenActive RefreshTokenState = iota
	RefreshTokenRevoked
	RefreshTokenExpired
)

func (s RefreshTokenState) String() string {
	switch s {
	case RefreshTokenActive:
		return "active"
	case RefreshTokenRevoked:
		return "revoked"
	case RefreshTokenExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// RefreshToken is the server-side record of an issued refresh token.
// Only the hash of the opaque token is kept.
type RefreshToken struct {
	ID          uuid.UUID
	TokenHash   string
	UserID      uuid.UUID
	IssuedAt    time.Time
	ExpiresAt   time.Time
	RevokedAt   *time.Time
	RotatedFrom *uuid.UUID
}

// State computes the record state at now. Revocation wins over expiry.
func (t RefreshToken) State(now time.Time) RefreshTokenState {
	if t.RevokedAt != nil {
		return RefreshTokenRevoked
	}
	if !now.Before(t.ExpiresAt) {
		return RefreshTokenExpired
	}
	return RefreshTokenActive
}

// Err maps a non-active state to the matching store sentinel.
func (s RefreshTokenState) Err() error {
	switch s {
	case RefreshTokenRevoked:
		return ErrTokenRevoked
	case RefreshTokenExpired:
		return ErrTokenExpired
	default:
		return nil
	}
}
