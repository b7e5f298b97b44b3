package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/metrics"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/token"
)

// TokenService issues, rotates and revokes token pairs and resolves access
// tokens. It composes the TokenCodec and the RefreshTokenStore.
type TokenService struct {
	codec   model.TokenCodec
	store   model.RefreshTokenStore
	logger  *logger.Logger
	now     func() time.Time
	metrics *metrics.Metrics
}

func NewTokenService(codec model.TokenCodec, store model.RefreshTokenStore, logger *logger.Logger, opts ...Option) *TokenService {
	o := applyOptions(opts)
	return &TokenService{
		codec:   codec,
		store:   store,
		logger:  logger,
		now:     o.now,
		metrics: o.metrics,
	}
}

// Issue mints an access token and a refresh token for userID and persists
// the refresh record.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (model.TokenPair, error) {
	now := s.now()

	access, err := s.codec.IssueAccess(userID, now)
	if err != nil {
		return model.TokenPair{}, internalError(fmt.Errorf("issue access: %w", err))
	}

	refresh, expiresAt, err := s.codec.IssueRefresh(now)
	if err != nil {
		return model.TokenPair{}, internalError(fmt.Errorf("issue refresh: %w", err))
	}

	rt := model.RefreshToken{
		ID:        uuid.New(),
		TokenHash: token.HashRefresh(refresh),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}
	if err := s.store.Create(ctx, rt); err != nil {
		s.logger.Error("Token service: failed to persist refresh token",
			"user_id", userID,
			"error", err.Error())
		return model.TokenPair{}, storeUnavailable(fmt.Errorf("persist refresh: %w", err))
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: s.codec.AccessTTL()}, nil
}

// Rotate exchanges a live refresh token for a new pair. The presented token
// is revoked in the same store operation that inserts its successor.
func (s *TokenService) Rotate(ctx context.Context, presented string) (pair model.TokenPair, err error) {
	defer func() { s.metrics.Observe(metrics.OpRefresh, err) }()

	if presented == "" {
		return model.TokenPair{}, model.NewError(model.KindInvalidRefresh, "refresh token is required", nil)
	}

	now := s.now()

	refresh, expiresAt, err := s.codec.IssueRefresh(now)
	if err != nil {
		return model.TokenPair{}, internalError(fmt.Errorf("issue refresh: %w", err))
	}

	next := model.RefreshToken{
		ID:        uuid.New(),
		TokenHash: token.HashRefresh(refresh),
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}

	saved, err := s.store.Rotate(ctx, token.HashRefresh(presented), next, now)
	if err != nil {
		if reason, ok := refreshRejection(err); ok {
			s.logger.Info("Token service: refresh rejected",
				"reason", reason)
			return model.TokenPair{}, model.NewError(model.KindInvalidRefresh, model.ErrInvalidRefresh.Message, err)
		}
		s.logger.Error("Token service: failed to rotate refresh token",
			"error", err.Error())
		return model.TokenPair{}, storeUnavailable(fmt.Errorf("rotate refresh: %w", err))
	}

	access, err := s.codec.IssueAccess(saved.UserID, now)
	if err != nil {
		return model.TokenPair{}, internalError(fmt.Errorf("issue access: %w", err))
	}

	s.logger.Debug("Token service: refresh token rotated",
		"user_id", saved.UserID,
		"record_id", saved.ID)

	return model.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: s.codec.AccessTTL()}, nil
}

func refreshRejection(err error) (string, bool) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return "unknown", true
	case errors.Is(err, model.ErrTokenRevoked):
		return model.RefreshTokenRevoked.String(), true
	case errors.Is(err, model.ErrTokenExpired):
		return model.RefreshTokenExpired.String(), true
	default:
		return "", false
	}
}

// Revoke marks the presented refresh token revoked. Unknown and already
// revoked tokens are not an error.
func (s *TokenService) Revoke(ctx context.Context, presented string) (err error) {
	defer func() { s.metrics.Observe(metrics.OpLogout, err) }()

	if presented == "" {
		return nil
	}

	err = s.store.RevokeByHash(ctx, token.HashRefresh(presented), s.now())
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		s.logger.Error("Token service: failed to revoke refresh token",
			"error", err.Error())
		return storeUnavailable(fmt.Errorf("revoke refresh: %w", err))
	}

	return nil
}

// Authenticate resolves the user id behind an Authorization header value.
// Every failure is reported as unauthenticated.
func (s *TokenService) Authenticate(_ context.Context, authorization string) (userID uuid.UUID, err error) {
	defer func() { s.metrics.Observe(metrics.OpAuthenticate, err) }()

	tokenString, ok := bearerToken(authorization)
	if !ok {
		return uuid.Nil, model.NewError(model.KindUnauthenticated, "missing authorization token", nil)
	}

	userID, err = s.codec.VerifyAccess(tokenString, s.now())
	if err != nil {
		s.logger.Debug("Token service: access token rejected",
			"expired", errors.Is(err, model.ErrTokenExpired))
		return uuid.Nil, model.NewError(model.KindUnauthenticated, "invalid or expired access token", err)
	}

	return userID, nil
}

// bearerToken extracts the credential of a "Bearer <token>" header value.
func bearerToken(header string) (string, bool) {
	scheme, credential, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	credential = strings.TrimSpace(credential)
	if credential == "" || strings.ContainsAny(credential, " \t") {
		return "", false
	}

	return credential, true
}
