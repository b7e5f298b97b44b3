package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
)

// RefreshTokenHeader carries the refresh token when the body does not.
const RefreshTokenHeader = "X-Refresh-Token"

// AuthService defines registration, login and token lifecycle operations.
type AuthService interface {
	Register(ctx context.Context, params service.RegisterParams) (model.PublicUser, error)
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Auth handles the /api/auth routes.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{authService: authService, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles POST /api/auth/register.
func (h *Auth) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req, false); err != nil {
		respondWithError(c, h.logger, "Auth handler: registration rejected", err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithError(c, h.logger, "Auth handler: registration failed", err)
		return
	}

	c.JSON(http.StatusCreated, userResponse{User: user})
}

// Login handles POST /api/auth/login.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req, false); err != nil {
		respondWithError(c, h.logger, "Auth handler: login rejected", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(c, h.logger, "Auth handler: login failed", err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		tokenResponse: newTokenResponse(result.Tokens),
		User:          result.User,
	})
}

// refreshToken reads the token from the JSON body, falling back to the header.
func (h *Auth) refreshToken(c *gin.Context) (string, error) {
	var req refreshRequest
	if err := bindJSON(c, &req, true); err != nil {
		return "", err
	}
	if req.RefreshToken != "" {
		return req.RefreshToken, nil
	}
	return c.GetHeader(RefreshTokenHeader), nil
}

// Refresh handles POST /api/auth/refresh.
func (h *Auth) Refresh(c *gin.Context) {
	presented, err := h.refreshToken(c)
	if err != nil {
		respondWithError(c, h.logger, "Auth handler: refresh rejected", err)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), presented)
	if err != nil {
		respondWithError(c, h.logger, "Auth handler: token refresh failed", err)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(pair))
}

// Logout handles POST /api/auth/logout.
func (h *Auth) Logout(c *gin.Context) {
	presented, err := h.refreshToken(c)
	if err != nil {
		respondWithError(c, h.logger, "Auth handler: logout rejected", err)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), presented); err != nil {
		respondWithError(c, h.logger, "Auth handler: logout failed", err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}
