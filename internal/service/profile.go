package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// ProfileUpdate holds the optional fields of a profile update.
type ProfileUpdate struct {
	Name *string
}

type profileFields struct {
	Name string `json:"name" validate:"required,max=100"`
}

// Profile reads and updates the caller's own user record.
type Profile struct {
	userStore model.UserStore
	logger    *logger.Logger
	now       func() time.Time
}

func NewProfile(userStore model.UserStore, logger *logger.Logger, opts ...Option) *Profile {
	o := applyOptions(opts)
	return &Profile{userStore: userStore, logger: logger, now: o.now}
}

func (p *Profile) Get(ctx context.Context, userID uuid.UUID) (model.PublicUser, error) {
	user, err := p.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, p.lookupError(userID, err)
	}
	return user.Public(), nil
}

func (p *Profile) Update(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (model.PublicUser, error) {
	if update.Name == nil {
		return model.PublicUser{}, invalidInput("no fields to update")
	}

	fields := profileFields{Name: strings.TrimSpace(*update.Name)}
	if err := validateStruct(fields); err != nil {
		return model.PublicUser{}, err
	}

	user, err := p.userStore.UpdateName(ctx, userID, fields.Name, p.now().UTC())
	if err != nil {
		return model.PublicUser{}, p.lookupError(userID, err)
	}

	p.logger.Info("Profile service: profile updated",
		"user_id", userID)

	return user.Public(), nil
}

func (p *Profile) lookupError(userID uuid.UUID, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		p.logger.Info("Profile service: token subject no longer exists",
			"user_id", userID)
		return model.NewError(model.KindUnauthenticated, "account no longer exists", err)
	}
	p.logger.Error("Profile service: failed to access user",
		"user_id", userID,
		"error", err.Error())
	return storeUnavailable(fmt.Errorf("access user %s: %w", userID, err))
}
