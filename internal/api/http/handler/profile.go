package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/api/http/middleware"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
)

// ProfileService defines operations on the caller's own profile.
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (model.PublicUser, error)
	Update(ctx context.Context, userID uuid.UUID, update service.ProfileUpdate) (model.PublicUser, error)
}

// Profile handles the /api/user/me routes.
type Profile struct {
	profileService ProfileService
	logger         *logger.Logger
}

func NewProfile(profileService ProfileService, logger *logger.Logger) *Profile {
	return &Profile{profileService: profileService, logger: logger}
}

type updateProfileRequest struct {
	Name *string `json:"name"`
}

func (h *Profile) callerID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondWithError(c, h.logger, "Profile handler: user ID not found in context", model.ErrUnauthenticated)
	}
	return userID, ok
}

// Get handles GET /api/user/me.
func (h *Profile) Get(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	user, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, h.logger, "Profile handler: get profile failed", err)
		return
	}

	c.JSON(http.StatusOK, userResponse{User: user})
}

// Update handles PUT /api/user/me.
func (h *Profile) Update(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := bindJSON(c, &req, false); err != nil {
		respondWithError(c, h.logger, "Profile handler: update rejected", err)
		return
	}

	user, err := h.profileService.Update(c.Request.Context(), userID, service.ProfileUpdate{Name: req.Name})
	if err != nil {
		respondWithError(c, h.logger, "Profile handler: update profile failed", err)
		return
	}

	c.JSON(http.StatusOK, userResponse{User: user})
}
