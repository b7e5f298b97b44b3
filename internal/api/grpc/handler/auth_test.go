package handler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/identity-server/internal/api/grpc/proto"
	"github.com/dtroode/identity-server/internal/mocks"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
	"github.com/dtroode/identity-server/internal/testutil"
)

func testUser() model.PublicUser {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return model.PublicUser{ID: uuid.New(), Name: "A", Email: "a@x.com", CreatedAt: now, UpdatedAt: now}
}

func TestIdentity_Register(t *testing.T) {
	t.Parallel()

	svc := mocks.NewAuthService(t)
	user := testUser()

	svc.On("Register", mock.Anything, service.RegisterParams{Name: "A", Email: "a@x.com", Password: "p1"}).
		Return(user, nil).Once()

	h := NewIdentity(svc, nil, nil, testutil.MakeNoopLogger())
	out, err := h.Register(context.Background(), &proto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), out.User.Id)
	assert.Equal(t, "a@x.com", out.User.Email)
}

func TestIdentity_Register_Duplicate(t *testing.T) {
	t.Parallel()

	svc := mocks.NewAuthService(t)
	svc.On("Register", mock.Anything, mock.Anything).Return(model.PublicUser{}, model.ErrDuplicateEmail).Once()

	h := NewIdentity(svc, nil, nil, testutil.MakeNoopLogger())
	out, err := h.Register(context.Background(), &proto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "p1"})
	assert.Nil(t, out)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestIdentity_Login(t *testing.T) {
	t.Parallel()

	svc := mocks.NewAuthService(t)
	user := testUser()

	svc.On("Login", mock.Anything, "a@x.com", "p1").Return(service.LoginResult{
		Tokens: model.TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresIn: 15 * time.Minute},
		User:   user,
	}, nil).Once()

	h := NewIdentity(svc, nil, nil, testutil.MakeNoopLogger())
	out, err := h.Login(context.Background(), &proto.LoginRequest{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "acc", out.AccessToken)
	assert.Equal(t, "ref", out.RefreshToken)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, int64(900), out.ExpiresIn)
	assert.Equal(t, user.ID.String(), out.User.Id)
}

func TestIdentity_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc := mocks.NewAuthService(t)
	svc.On("Login", mock.Anything, "a@x.com", "bad").Return(service.LoginResult{}, model.ErrInvalidCredentials).Once()

	h := NewIdentity(svc, nil, nil, testutil.MakeNoopLogger())
	out, err := h.Login(context.Background(), &proto.LoginRequest{Email: "a@x.com", Password: "bad"})
	assert.Nil(t, out)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())
	assert.Equal(t, "invalid email or password", st.Message())
}

func TestIdentity_Refresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pair     model.TokenPair
		err      error
		wantCode codes.Code
	}{
		{
			name:     "rotated",
			pair:     model.TokenPair{AccessToken: "acc2", RefreshToken: "ref2", ExpiresIn: time.Minute},
			wantCode: codes.OK,
		},
		{
			name:     "revoked token",
			err:      model.ErrInvalidRefresh,
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "store down",
			err:      model.ErrStoreUnavailable,
			wantCode: codes.Unavailable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewAuthService(t)
			svc.On("Refresh", mock.Anything, "ref1").Return(tt.pair, tt.err).Once()

			h := NewIdentity(svc, nil, nil, testutil.MakeNoopLogger())
			out, err := h.Refresh(context.Background(), &proto.RefreshRequest{RefreshToken: "ref1"})
			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				assert.Equal(t, "ref2", out.RefreshToken)
				assert.Equal(t, int64(60), out.ExpiresIn)
			}
		})
	}
}

func TestIdentity_Logout(t *testing.T) {
	t.Parallel()

	svc := mocks.NewAuthService(t)
	svc.On("Logout", mock.Anything, "ref").Return(nil).Once()

	h := NewIdentity(svc, nil, nil, testutil.MakeNoopLogger())
	out, err := h.Logout(context.Background(), &proto.LogoutRequest{RefreshToken: "ref"})
	require.NoError(t, err)
	assert.NotNil(t, out)
}
