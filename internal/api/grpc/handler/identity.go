package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/api/grpc/proto"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
)

// AuthService defines registration, login and token lifecycle operations.
type AuthService interface {
	Register(ctx context.Context, params service.RegisterParams) (model.PublicUser, error)
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// ProfileService defines operations on the caller's own profile.
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (model.PublicUser, error)
	Update(ctx context.Context, userID uuid.UUID, update service.ProfileUpdate) (model.PublicUser, error)
}

var _ proto.IdentityServer = (*Identity)(nil)

// Identity serves the identity.v1.Identity gRPC service.
type Identity struct {
	authService    AuthService
	profileService ProfileService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewIdentity creates a new Identity handler.
func NewIdentity(
	authService AuthService,
	profileService ProfileService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Identity {
	return &Identity{
		authService:    authService,
		profileService: profileService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// logFailure logs caller mistakes at info level and server faults at error level.
func (h *Identity) logFailure(msg string, err error, args ...any) {
	args = append(args, "kind", string(model.KindOf(err)), "error", err.Error())
	switch model.KindOf(err) {
	case model.KindStoreUnavailable, model.KindInternal:
		h.logger.Error(msg, args...)
	default:
		h.logger.Info(msg, args...)
	}
}

func toProtoUser(u model.PublicUser) *proto.User {
	return &proto.User{
		Id:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toTokenResponse(pair model.TokenPair) *proto.TokenResponse {
	return &proto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}
