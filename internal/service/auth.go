package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/metrics"
	"github.com/dtroode/identity-server/internal/model"
)

// RegisterParams are the fields accepted at registration.
type RegisterParams struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Tokens model.TokenPair
	User   model.PublicUser
}

type Auth struct {
	userStore    model.UserStore
	hasher       model.PasswordHasher
	tokenService *TokenService
	logger       *logger.Logger
	now          func() time.Time
	metrics      *metrics.Metrics

	// digest checked for unknown emails
	dummyDigest string
}

func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokenService *TokenService,
	logger *logger.Logger,
	opts ...Option,
) (*Auth, error) {
	secret := make([]byte, 16)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate dummy password: %w", err)
	}
	dummy, err := hasher.Hash(base64.RawStdEncoding.EncodeToString(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to hash dummy password: %w", err)
	}

	o := applyOptions(opts)
	return &Auth{
		userStore:    userStore,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
		now:          o.now,
		metrics:      o.metrics,
		dummyDigest:  dummy,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and returns its public projection.
func (a *Auth) Register(ctx context.Context, params RegisterParams) (user model.PublicUser, err error) {
	defer func() { a.metrics.Observe(metrics.OpRegister, err) }()

	params.Name = strings.TrimSpace(params.Name)
	params.Email = normalizeEmail(params.Email)

	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email)

	if err := validateStruct(params); err != nil {
		a.logger.Info("Auth service: registration rejected",
			"email", params.Email,
			"reason", model.MessageOf(err))
		return model.PublicUser{}, err
	}

	_, err = a.userStore.GetByEmail(ctx, params.Email)
	switch {
	case err == nil:
		a.logger.Info("Auth service: user already exists",
			"email", params.Email)
		return model.PublicUser{}, model.ErrDuplicateEmail
	case !errors.Is(err, model.ErrNotFound):
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return model.PublicUser{}, storeUnavailable(fmt.Errorf("get user by email: %w", err))
	}

	digest, err := a.hasher.Hash(params.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"email", params.Email,
			"error", err.Error())
		return model.PublicUser{}, internalError(fmt.Errorf("hash password: %w", err))
	}

	now := a.now().UTC()
	created, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			a.logger.Info("Auth service: user already exists",
				"email", params.Email)
			return model.PublicUser{}, model.ErrDuplicateEmail
		}
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return model.PublicUser{}, storeUnavailable(fmt.Errorf("create user: %w", err))
	}

	a.logger.Info("Auth service: user registered",
		"user_id", created.ID)

	return created.Public(), nil
}

// Login verifies credentials and issues a token pair. Unknown email and wrong
// password produce the same error.
func (a *Auth) Login(ctx context.Context, email, password string) (result LoginResult, err error) {
	defer func() { a.metrics.Observe(metrics.OpLogin, err) }()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, model.ErrInvalidCredentials
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			_, _ = a.hasher.Verify(password, a.dummyDigest)
			a.logger.Info("Auth service: login failed",
				"email", email)
			return LoginResult{}, model.ErrInvalidCredentials
		}
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return LoginResult{}, storeUnavailable(fmt.Errorf("get user by email: %w", err))
	}

	ok, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		a.logger.Error("Auth service: stored password digest is corrupt",
			"user_id", user.ID,
			"error", err.Error())
		return LoginResult{}, internalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		a.logger.Info("Auth service: login failed",
			"email", email)
		return LoginResult{}, model.ErrInvalidCredentials
	}

	pair, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return LoginResult{Tokens: pair, User: user.Public()}, nil
}

// Refresh rotates the presented refresh token.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	return a.tokenService.Rotate(ctx, refreshToken)
}

// Logout revokes the presented refresh token. It never fails for unknown tokens.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	return a.tokenService.Revoke(ctx, refreshToken)
}
