package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dtroode/identity-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

const (
	rotateStatusNotFound int64 = 0
	rotateStatusRevoked  int64 = 1
	rotateStatusExpired  int64 = 2
	rotateStatusRotated  int64 = 3
)

const (
	fieldID          = "id"
	fieldTokenHash   = "token_hash"
	fieldUserID      = "user_id"
	fieldIssuedAt    = "issued_at"
	fieldExpiresAt   = "expires_at"
	fieldRevokedAt   = "revoked_at"
	fieldRotatedFrom = "rotated_from"
)

// KEYS[1] old record, KEYS[2] new record.
// ARGV: now ms, new id, new token hash, new issued_at ms, new expires_at ms.
const rotateScript = `
local old = redis.call("HMGET", KEYS[1], "user_id", "expires_at", "revoked_at", "id")
if not old[1] then
  return {0}
end
if old[3] then
  return {1}
end
if tonumber(old[2]) <= tonumber(ARGV[1]) then
  return {2}
end
redis.call("HSET", KEYS[1], "revoked_at", ARGV[1])
redis.call("HSET", KEYS[2],
  "id", ARGV[2],
  "token_hash", ARGV[3],
  "user_id", old[1],
  "issued_at", ARGV[4],
  "expires_at", ARGV[5],
  "rotated_from", old[4])
redis.call("PEXPIREAT", KEYS[2], ARGV[5])
return {3, old[1], old[4]}
`

var rotateLua = goredis.NewScript(rotateScript)

// KEYS[1] record. ARGV[1] now ms. Returns 0 when the record is missing.
const revokeScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSETNX", KEYS[1], "revoked_at", ARGV[1])
return 1
`

var revokeLua = goredis.NewScript(revokeScript)

// RefreshTokenRepository keeps each record in a hash that expires together
// with the token. Rotation and revocation run as Lua scripts, so each is a
// single atomic step on the server.
type RefreshTokenRepository struct {
	client  goredis.UniversalClient
	prefix  string
	timeout time.Duration
}

func NewRefreshTokenRepository(client goredis.UniversalClient, prefix string, timeout time.Duration) *RefreshTokenRepository {
	return &RefreshTokenRepository{client: client, prefix: prefix, timeout: timeout}
}

func (r *RefreshTokenRepository) key(hash string) string {
	return r.prefix + "refresh:" + hash
}

func (r *RefreshTokenRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	values := map[string]any{
		fieldID:        token.ID.String(),
		fieldTokenHash: token.TokenHash,
		fieldUserID:    token.UserID.String(),
		fieldIssuedAt:  token.IssuedAt.UnixMilli(),
		fieldExpiresAt: token.ExpiresAt.UnixMilli(),
	}
	if token.RevokedAt != nil {
		values[fieldRevokedAt] = token.RevokedAt.UnixMilli()
	}
	if token.RotatedFrom != nil {
		values[fieldRotatedFrom] = token.RotatedFrom.String()
	}

	key := r.key(token.TokenHash)
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, values)
		pipe.PExpireAt(ctx, key, token.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, hash string) (model.RefreshToken, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	values, err := r.client.HGetAll(ctx, r.key(hash)).Result()
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token by hash: %w", err)
	}
	if len(values) == 0 {
		return model.RefreshToken{}, model.ErrNotFound
	}

	rt, err := decodeRecord(values)
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to decode refresh token %s: %w", r.key(hash), err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldHash string, next model.RefreshToken, now time.Time) (model.RefreshToken, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if next.ID == uuid.Nil {
		next.ID = uuid.New()
	}

	res, err := rotateLua.Run(ctx, r.client,
		[]string{r.key(oldHash), r.key(next.TokenHash)},
		now.UnixMilli(), next.ID.String(), next.TokenHash, next.IssuedAt.UnixMilli(), next.ExpiresAt.UnixMilli(),
	).Slice()
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if len(res) == 0 {
		return model.RefreshToken{}, errors.New("failed to rotate refresh token: empty script result")
	}

	status, ok := res[0].(int64)
	if !ok {
		return model.RefreshToken{}, fmt.Errorf("failed to rotate refresh token: unexpected status %v", res[0])
	}

	switch status {
	case rotateStatusNotFound:
		return model.RefreshToken{}, model.ErrNotFound
	case rotateStatusRevoked:
		return model.RefreshToken{}, model.ErrTokenRevoked
	case rotateStatusExpired:
		return model.RefreshToken{}, model.ErrTokenExpired
	case rotateStatusRotated:
	default:
		return model.RefreshToken{}, fmt.Errorf("failed to rotate refresh token: unexpected status %d", status)
	}

	if len(res) != 3 {
		return model.RefreshToken{}, errors.New("failed to rotate refresh token: short script result")
	}
	userID, err := uuid.Parse(fmt.Sprint(res[1]))
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to rotate refresh token: bad user id: %w", err)
	}
	oldID, err := uuid.Parse(fmt.Sprint(res[2]))
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to rotate refresh token: bad record id: %w", err)
	}

	next.UserID = userID
	next.RotatedFrom = &oldID
	next.RevokedAt = nil
	return next, nil
}

func (r *RefreshTokenRepository) RevokeByHash(ctx context.Context, hash string, now time.Time) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	found, err := revokeLua.Run(ctx, r.client, []string{r.key(hash)}, now.UnixMilli()).Int64()
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if found == 0 {
		return model.ErrNotFound
	}
	return nil
}

func decodeRecord(values map[string]string) (model.RefreshToken, error) {
	var (
		rt  model.RefreshToken
		err error
	)

	if rt.ID, err = uuid.Parse(values[fieldID]); err != nil {
		return model.RefreshToken{}, fmt.Errorf("bad id: %w", err)
	}
	if rt.UserID, err = uuid.Parse(values[fieldUserID]); err != nil {
		return model.RefreshToken{}, fmt.Errorf("bad user id: %w", err)
	}
	rt.TokenHash = values[fieldTokenHash]

	if rt.IssuedAt, err = parseMillis(values[fieldIssuedAt]); err != nil {
		return model.RefreshToken{}, fmt.Errorf("bad issued_at: %w", err)
	}
	if rt.ExpiresAt, err = parseMillis(values[fieldExpiresAt]); err != nil {
		return model.RefreshToken{}, fmt.Errorf("bad expires_at: %w", err)
	}
	if v, ok := values[fieldRevokedAt]; ok {
		revokedAt, err := parseMillis(v)
		if err != nil {
			return model.RefreshToken{}, fmt.Errorf("bad revoked_at: %w", err)
		}
		rt.RevokedAt = &revokedAt
	}
	if v, ok := values[fieldRotatedFrom]; ok {
		rotatedFrom, err := uuid.Parse(v)
		if err != nil {
			return model.RefreshToken{}, fmt.Errorf("bad rotated_from: %w", err)
		}
		rt.RotatedFrom = &rotatedFrom
	}

	return rt, nil
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
