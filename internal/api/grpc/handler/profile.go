package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/identity-server/internal/api/grpc/proto"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
)

func (h *Identity) callerID(ctx context.Context) (uuid.UUID, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		h.logger.Error("Profile handler: user ID not found in context")
		return uuid.Nil, status.Error(codes.Unauthenticated, model.ErrUnauthenticated.Message)
	}
	return userID, nil
}

// GetProfile returns the caller's profile.
func (h *Identity) GetProfile(ctx context.Context, _ *proto.Empty) (*proto.UserResponse, error) {
	userID, err := h.callerID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.profileService.Get(ctx, userID)
	if err != nil {
		h.logFailure("Profile handler: get profile failed", err,
			"user_id", userID)
		return nil, handleError(err)
	}

	return &proto.UserResponse{User: toProtoUser(user)}, nil
}

// UpdateProfile changes the caller's name.
func (h *Identity) UpdateProfile(ctx context.Context, req *proto.UpdateProfileRequest) (*proto.UserResponse, error) {
	userID, err := h.callerID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.profileService.Update(ctx, userID, service.ProfileUpdate{Name: req.Name})
	if err != nil {
		h.logFailure("Profile handler: update profile failed", err,
			"user_id", userID)
		return nil, handleError(err)
	}

	h.logger.Info("Profile handler: profile updated",
		"user_id", userID)

	return &proto.UserResponse{User: toProtoUser(user)}, nil
}
