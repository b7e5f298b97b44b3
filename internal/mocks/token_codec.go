package mocks

import (
	time "time"

	mock "github.com/stretchr/testify/mock"

	uuid "github.com/google/uuid"
)

// TokenCodec is a mock type for the TokenCodec type
type TokenCodec struct {
	mock.Mock
}

// AccessTTL provides a mock function with given fields:
func (_m *TokenCodec) AccessTTL() time.Duration {
	ret := _m.Called()

	return ret.Get(0).(time.Duration)
}

// IssueAccess provides a mock function with given fields: userID, now
func (_m *TokenCodec) IssueAccess(userID uuid.UUID, now time.Time) (string, error) {
	ret := _m.Called(userID, now)

	return ret.String(0), ret.Error(1)
}

// IssueRefresh provides a mock function with given fields: now
func (_m *TokenCodec) IssueRefresh(now time.Time) (string, time.Time, error) {
	ret := _m.Called(now)

	return ret.String(0), ret.Get(1).(time.Time), ret.Error(2)
}

// VerifyAccess provides a mock function with given fields: token, now
func (_m *TokenCodec) VerifyAccess(token string, now time.Time) (uuid.UUID, error) {
	ret := _m.Called(token, now)

	return ret.Get(0).(uuid.UUID), ret.Error(1)
}

// NewTokenCodec creates a new instance of TokenCodec. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewTokenCodec(t interface {
	mock.TestingT
	Cleanup(func())
}) *TokenCodec {
	m := &TokenCodec{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
