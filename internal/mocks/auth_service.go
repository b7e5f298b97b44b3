package mocks

import (
	context "context"

	model "github.com/dtroode/identity-server/internal/model"
	service "github.com/dtroode/identity-server/internal/service"
	mock "github.com/stretchr/testify/mock"
)

// AuthService is a mock type for the AuthService type
type AuthService struct {
	mock.Mock
}

// Login provides a mock function with given fields: ctx, email, password
func (_m *AuthService) Login(ctx context.Context, email string, password string) (service.LoginResult, error) {
	ret := _m.Called(ctx, email, password)

	return ret.Get(0).(service.LoginResult), ret.Error(1)
}

// Logout provides a mock function with given fields: ctx, refreshToken
func (_m *AuthService) Logout(ctx context.Context, refreshToken string) error {
	ret := _m.Called(ctx, refreshToken)

	return ret.Error(0)
}

// Refresh provides a mock function with given fields: ctx, refreshToken
func (_m *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	ret := _m.Called(ctx, refreshToken)

	return ret.Get(0).(model.TokenPair), ret.Error(1)
}

// Register provides a mock function with given fields: ctx, params
func (_m *AuthService) Register(ctx context.Context, params service.RegisterParams) (model.PublicUser, error) {
	ret := _m.Called(ctx, params)

	return ret.Get(0).(model.PublicUser), ret.Error(1)
}

// NewAuthService creates a new instance of AuthService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewAuthService(t interface {
	mock.TestingT
	Cleanup(func())
}) *AuthService {
	m := &AuthService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
