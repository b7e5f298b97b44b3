package service

import (
	"github.com/dtroode/identity-server/internal/model"
)

func storeUnavailable(err error) error {
	return model.NewError(model.KindStoreUnavailable, model.ErrStoreUnavailable.Message, err)
}

func internalError(err error) error {
	return model.NewError(model.KindInternal, model.ErrInternal.Message, err)
}

func invalidInput(message string) error {
	return model.NewError(model.KindInvalidInput, message, nil)
}
