package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

// RefreshTokenRepository serializes all writes behind one mutex, which makes
// Rotate a compare-and-swap on the revoked flag.
type RefreshTokenRepository struct {
	mu     sync.Mutex
	byHash map[string]model.RefreshToken
}

func NewRefreshTokenRepository() *RefreshTokenRepository {
	return &RefreshTokenRepository{byHash: make(map[string]model.RefreshToken)}
}

func (r *RefreshTokenRepository) Create(_ context.Context, token model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if _, ok := r.byHash[token.TokenHash]; ok {
		return model.ErrConflict
	}
	r.byHash[token.TokenHash] = token
	return nil
}

func (r *RefreshTokenRepository) GetByHash(_ context.Context, hash string) (model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.byHash[hash]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	return token, nil
}

func (r *RefreshTokenRepository) Rotate(_ context.Context, oldHash string, next model.RefreshToken, now time.Time) (model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byHash[oldHash]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	if err := old.State(now).Err(); err != nil {
		return model.RefreshToken{}, err
	}
	if _, ok := r.byHash[next.TokenHash]; ok {
		return model.RefreshToken{}, model.ErrConflict
	}

	revokedAt := now
	old.RevokedAt = &revokedAt
	r.byHash[oldHash] = old

	if next.ID == uuid.Nil {
		next.ID = uuid.New()
	}
	oldID := old.ID
	next.UserID = old.UserID
	next.RotatedFrom = &oldID
	next.RevokedAt = nil
	r.byHash[next.TokenHash] = next

	return next, nil
}

func (r *RefreshTokenRepository) RevokeByHash(_ context.Context, hash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.byHash[hash]
	if !ok {
		return model.ErrNotFound
	}
	if token.RevokedAt == nil {
		revokedAt := now
		token.RevokedAt = &revokedAt
		r.byHash[hash] = token
	}
	return nil
}
