package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/identity-server/internal/model"
)

func newTestRepository(t *testing.T) (*RefreshTokenRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRefreshTokenRepository(client, "test:", time.Second), mr
}

func seedToken(t *testing.T, repo *RefreshTokenRepository, hash string, now time.Time) model.RefreshToken {
	t.Helper()
	token := model.RefreshToken{
		ID:        uuid.New(),
		TokenHash: hash,
		UserID:    uuid.New(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), token))
	return token
}

func TestRefreshTokenRepository_CreateAndGet(t *testing.T) {
	repo, mr := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	seeded := seedToken(t, repo, "h1", now)

	got, err := repo.GetByHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
	assert.Equal(t, seeded.UserID, got.UserID)
	assert.True(t, seeded.IssuedAt.Equal(got.IssuedAt))
	assert.True(t, seeded.ExpiresAt.Equal(got.ExpiresAt))
	assert.Nil(t, got.RevokedAt)
	assert.Equal(t, model.RefreshTokenActive, got.State(now))

	assert.True(t, mr.Exists("test:refresh:h1"))
	assert.Greater(t, mr.TTL("test:refresh:h1"), time.Duration(0))

	_, err = repo.GetByHash(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRefreshTokenRepository_Rotate(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	old := seedToken(t, repo, "old", now)
	next := model.RefreshToken{ID: uuid.New(), TokenHash: "new", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

	saved, err := repo.Rotate(ctx, "old", next, now)
	require.NoError(t, err)
	assert.Equal(t, old.UserID, saved.UserID)
	require.NotNil(t, saved.RotatedFrom)
	assert.Equal(t, old.ID, *saved.RotatedFrom)

	stored, err := repo.GetByHash(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, old.UserID, stored.UserID)
	assert.Equal(t, model.RefreshTokenActive, stored.State(now))

	prev, err := repo.GetByHash(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, model.RefreshTokenRevoked, prev.State(now))

	_, err = repo.Rotate(ctx, "old", model.RefreshToken{ID: uuid.New(), TokenHash: "newer", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}, now)
	assert.ErrorIs(t, err, model.ErrTokenRevoked)

	_, err = repo.GetByHash(ctx, "newer")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRefreshTokenRepository_Rotate_Rejections(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()
	next := model.RefreshToken{ID: uuid.New(), TokenHash: "next", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

	_, err := repo.Rotate(ctx, "unknown", next, now)
	assert.ErrorIs(t, err, model.ErrNotFound)

	seeded := seedToken(t, repo, "aging", now)
	_, err = repo.Rotate(ctx, "aging", next, seeded.ExpiresAt)
	assert.ErrorIs(t, err, model.ErrTokenExpired)

	_, err = repo.GetByHash(ctx, "next")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRefreshTokenRepository_RevokeByHash(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	seedToken(t, repo, "h", now)

	require.NoError(t, repo.RevokeByHash(ctx, "h", now))
	require.NoError(t, repo.RevokeByHash(ctx, "h", now.Add(time.Minute)))

	got, err := repo.GetByHash(ctx, "h")
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)
	assert.True(t, now.Equal(*got.RevokedAt))

	assert.ErrorIs(t, repo.RevokeByHash(ctx, "missing", now), model.ErrNotFound)
}

func TestRefreshTokenRepository_ConcurrentRotateHasSingleWinner(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedToken(t, repo, "contended", now)

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  int
		rejected int
		start    = make(chan struct{})
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := repo.Rotate(ctx, "contended", model.RefreshToken{
				ID:        uuid.New(),
				TokenHash: uuid.NewString(),
				IssuedAt:  now,
				ExpiresAt: now.Add(time.Hour),
			}, now)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case assert.ErrorIs(t, err, model.ErrTokenRevoked):
				rejected++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, workers-1, rejected)
}
