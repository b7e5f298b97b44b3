package handler

import (
	"context"

	"github.com/dtroode/identity-server/internal/api/grpc/proto"
	"github.com/dtroode/identity-server/internal/service"
)

// Register creates an account and returns its public projection.
func (h *Identity) Register(ctx context.Context, req *proto.RegisterRequest) (*proto.UserResponse, error) {
	h.logger.Debug("Auth handler: processing registration request",
		"email", req.Email)

	user, err := h.authService.Register(ctx, service.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logFailure("Auth handler: registration failed", err,
			"email", req.Email)
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: registration completed",
		"user_id", user.ID)

	return &proto.UserResponse{User: toProtoUser(user)}, nil
}

// Login verifies credentials and returns a token pair.
func (h *Identity) Login(ctx context.Context, req *proto.LoginRequest) (*proto.LoginResponse, error) {
	h.logger.Debug("Auth handler: processing login request",
		"email", req.Email)

	result, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logFailure("Auth handler: login failed", err,
			"email", req.Email)
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: login completed",
		"user_id", result.User.ID)

	tokens := toTokenResponse(result.Tokens)
	return &proto.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
		User:         toProtoUser(result.User),
	}, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (h *Identity) Refresh(ctx context.Context, req *proto.RefreshRequest) (*proto.TokenResponse, error) {
	h.logger.Debug("Auth handler: processing token refresh request")

	pair, err := h.authService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logFailure("Auth handler: token refresh failed", err)
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: token refresh successful")

	return toTokenResponse(pair), nil
}

// Logout revokes a refresh token.
func (h *Identity) Logout(ctx context.Context, req *proto.LogoutRequest) (*proto.Empty, error) {
	h.logger.Debug("Auth handler: processing logout request")

	if err := h.authService.Logout(ctx, req.RefreshToken); err != nil {
		h.logFailure("Auth handler: logout failed", err)
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: logout successful")

	return &proto.Empty{}, nil
}
