package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *Connection
}

func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

const insertRefreshToken = `
        INSERT INTO refresh_tokens (
            id, token_hash, user_id, issued_at, expires_at, revoked_at, rotated_from
        ) VALUES ($1,$2,$3,$4,$5,$6,$7)
    `

func insertToken(ctx context.Context, q DBTX, token model.RefreshToken) error {
	var revokedAt sql.NullTime
	if token.RevokedAt != nil {
		revokedAt = sql.NullTime{Time: *token.RevokedAt, Valid: true}
	}
	var rotatedFrom uuid.NullUUID
	if token.RotatedFrom != nil {
		rotatedFrom = uuid.NullUUID{UUID: *token.RotatedFrom, Valid: true}
	}

	_, err := q.ExecContext(ctx, insertRefreshToken,
		token.ID, token.TokenHash, token.UserID, token.IssuedAt, token.ExpiresAt, revokedAt, rotatedFrom,
	)
	return err
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	if err := insertToken(ctx, r.db.db, token); err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, hash string) (model.RefreshToken, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	const query = `
        SELECT id, token_hash, user_id, issued_at, expires_at, revoked_at, rotated_from
        FROM refresh_tokens WHERE token_hash = $1
    `
	var (
		rt          model.RefreshToken
		revokedAt   sql.NullTime
		rotatedFrom uuid.NullUUID
	)
	err := r.db.db.QueryRowContext(ctx, query, hash).Scan(
		&rt.ID, &rt.TokenHash, &rt.UserID, &rt.IssuedAt, &rt.ExpiresAt, &revokedAt, &rotatedFrom,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token by hash: %w", err)
	}
	if revokedAt.Valid {
		rt.RevokedAt = &revokedAt.Time
	}
	if rotatedFrom.Valid {
		rt.RotatedFrom = &rotatedFrom.UUID
	}
	return rt, nil
}

// Rotate revokes the old record with a conditional update and inserts the
// successor in the same transaction. Concurrent rotations of one hash
// serialize on the row lock; the loser sees revoked_at set and matches no row.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldHash string, next model.RefreshToken, now time.Time) (model.RefreshToken, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	const revoke = `
        UPDATE refresh_tokens SET revoked_at = $2
        WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2
        RETURNING id, user_id
    `
	const classify = `
        SELECT revoked_at IS NOT NULL FROM refresh_tokens WHERE token_hash = $1
    `

	if next.ID == uuid.Nil {
		next.ID = uuid.New()
	}

	err := r.db.WithTx(ctx, nil, func(ctx context.Context, tx DBTX) error {
		var oldID, userID uuid.UUID
		err := tx.QueryRowContext(ctx, revoke, oldHash, now).Scan(&oldID, &userID)
		if errors.Is(err, sql.ErrNoRows) {
			var revoked bool
			err := tx.QueryRowContext(ctx, classify, oldHash).Scan(&revoked)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return model.ErrNotFound
			case err != nil:
				return fmt.Errorf("failed to classify refresh token: %w", err)
			case revoked:
				return model.ErrTokenRevoked
			default:
				return model.ErrTokenExpired
			}
		}
		if err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}

		next.UserID = userID
		next.RotatedFrom = &oldID
		next.RevokedAt = nil
		if err := insertToken(ctx, tx, next); err != nil {
			return fmt.Errorf("failed to insert rotated refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.RefreshToken{}, err
	}

	return next, nil
}

func (r *RefreshTokenRepository) RevokeByHash(ctx context.Context, hash string, now time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	const query = `
        UPDATE refresh_tokens SET revoked_at = COALESCE(revoked_at, $2)
        WHERE token_hash = $1
    `
	res, err := r.db.db.ExecContext(ctx, query, hash, now)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
