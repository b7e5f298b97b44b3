package mocks

import mock "github.com/stretchr/testify/mock"

// PasswordHasher is a mock type for the PasswordHasher type
type PasswordHasher struct {
	mock.Mock
}

// Hash provides a mock function with given fields: plaintext
func (_m *PasswordHasher) Hash(plaintext string) (string, error) {
	ret := _m.Called(plaintext)

	return ret.String(0), ret.Error(1)
}

// Verify provides a mock function with given fields: plaintext, digest
func (_m *PasswordHasher) Verify(plaintext string, digest string) (bool, error) {
	ret := _m.Called(plaintext, digest)

	return ret.Bool(0), ret.Error(1)
}

// NewPasswordHasher creates a new instance of PasswordHasher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewPasswordHasher(t interface {
	mock.TestingT
	Cleanup(func())
}) *PasswordHasher {
	m := &PasswordHasher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
