package mocks

import (
	context "context"
	time "time"

	model "github.com/dtroode/identity-server/internal/model"
	mock "github.com/stretchr/testify/mock"
)

// RefreshTokenStore is a mock type for the RefreshTokenStore type
type RefreshTokenStore struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, token
func (_m *RefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) error {
	ret := _m.Called(ctx, token)

	if rf, ok := ret.Get(0).(func(context.Context, model.RefreshToken) error); ok {
		return rf(ctx, token)
	}
	return ret.Error(0)
}

// GetByHash provides a mock function with given fields: ctx, hash
func (_m *RefreshTokenStore) GetByHash(ctx context.Context, hash string) (model.RefreshToken, error) {
	ret := _m.Called(ctx, hash)

	if rf, ok := ret.Get(0).(func(context.Context, string) (model.RefreshToken, error)); ok {
		return rf(ctx, hash)
	}
	return ret.Get(0).(model.RefreshToken), ret.Error(1)
}

// RevokeByHash provides a mock function with given fields: ctx, hash, now
func (_m *RefreshTokenStore) RevokeByHash(ctx context.Context, hash string, now time.Time) error {
	ret := _m.Called(ctx, hash, now)

	if rf, ok := ret.Get(0).(func(context.Context, string, time.Time) error); ok {
		return rf(ctx, hash, now)
	}
	return ret.Error(0)
}

// Rotate provides a mock function with given fields: ctx, oldHash, next, now
func (_m *RefreshTokenStore) Rotate(ctx context.Context, oldHash string, next model.RefreshToken, now time.Time) (model.RefreshToken, error) {
	ret := _m.Called(ctx, oldHash, next, now)

	if rf, ok := ret.Get(0).(func(context.Context, string, model.RefreshToken, time.Time) (model.RefreshToken, error)); ok {
		return rf(ctx, oldHash, next, now)
	}
	return ret.Get(0).(model.RefreshToken), ret.Error(1)
}

// NewRefreshTokenStore creates a new instance of RefreshTokenStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewRefreshTokenStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *RefreshTokenStore {
	m := &RefreshTokenStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
