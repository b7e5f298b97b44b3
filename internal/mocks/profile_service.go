package mocks

import (
	context "context"

	model "github.com/dtroode/identity-server/internal/model"
	service "github.com/dtroode/identity-server/internal/service"
	mock "github.com/stretchr/testify/mock"

	uuid "github.com/google/uuid"
)

// ProfileService is a mock type for the ProfileService type
type ProfileService struct {
	mock.Mock
}

// Get provides a mock function with given fields: ctx, userID
func (_m *ProfileService) Get(ctx context.Context, userID uuid.UUID) (model.PublicUser, error) {
	ret := _m.Called(ctx, userID)

	return ret.Get(0).(model.PublicUser), ret.Error(1)
}

// Update provides a mock function with given fields: ctx, userID, update
func (_m *ProfileService) Update(ctx context.Context, userID uuid.UUID, update service.ProfileUpdate) (model.PublicUser, error) {
	ret := _m.Called(ctx, userID, update)

	return ret.Get(0).(model.PublicUser), ret.Error(1)
}

// NewProfileService creates a new instance of ProfileService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewProfileService(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProfileService {
	m := &ProfileService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
