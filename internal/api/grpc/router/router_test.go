package router

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	grpcctx "github.com/dtroode/identity-server/internal/api/grpc/context"
	"github.com/dtroode/identity-server/internal/api/grpc/proto"
	"github.com/dtroode/identity-server/internal/mocks"
	"github.com/dtroode/identity-server/internal/password"
	"github.com/dtroode/identity-server/internal/repository/memory"
	"github.com/dtroode/identity-server/internal/service"
	"github.com/dtroode/identity-server/internal/testutil"
	"github.com/dtroode/identity-server/internal/token"
)

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	ctxMgr := mocks.NewContextManager(t)
	lg := testutil.MakeNoopLogger()

	r := New(nil, nil, nil, ctxMgr, nil, lg)
	s := r.Register()
	if s == nil {
		t.Fatalf("expected non-nil grpc server")
	}
	_, ok := s.GetServiceInfo()[proto.Identity_ServiceName]
	assert.True(t, ok)
}

func newTestClient(t *testing.T) proto.IdentityClient {
	t.Helper()

	lg := testutil.MakeNoopLogger()
	hasher, err := password.NewArgon2(password.Params{Time: 1, MemoryKiB: 64, Parallelism: 1})
	require.NoError(t, err)
	codec, err := token.NewCodec("test-secret", "identity-test", time.Minute, time.Hour)
	require.NoError(t, err)

	users := memory.NewUserRepository()
	tokens := service.NewTokenService(codec, memory.NewRefreshTokenRepository(), lg)
	auth, err := service.NewAuth(users, hasher, tokens, lg)
	require.NoError(t, err)
	profile := service.NewProfile(users, lg)

	s := New(auth, profile, tokens, grpcctx.NewManager(), nil, lg).Register()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return proto.NewIdentityClient(conn)
}

func withBearer(ctx context.Context, accessToken string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+accessToken)
}

func TestRouter_EndToEnd(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	registered, err := client.Register(ctx, &proto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", registered.User.Email)

	_, err = client.Register(ctx, &proto.RegisterRequest{Name: "A", Email: "a@x.com", Password: "p1"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	login, err := client.Login(ctx, &proto.LoginRequest{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.Equal(t, int64(60), login.ExpiresIn)

	profile, err := client.GetProfile(withBearer(ctx, login.AccessToken), &proto.Empty{})
	require.NoError(t, err)
	assert.Equal(t, registered.User.Id, profile.User.Id)

	name := "B"
	updated, err := client.UpdateProfile(withBearer(ctx, login.AccessToken), &proto.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.User.Name)

	rotated, err := client.Refresh(ctx, &proto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	_, err = client.Refresh(ctx, &proto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.Logout(ctx, &proto.LogoutRequest{RefreshToken: rotated.RefreshToken})
	require.NoError(t, err)
	_, err = client.Logout(ctx, &proto.LogoutRequest{RefreshToken: rotated.RefreshToken})
	require.NoError(t, err)
}

func TestRouter_ProfileRequiresToken(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	_, err := client.GetProfile(ctx, &proto.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.GetProfile(withBearer(ctx, "not-a-jwt"), &proto.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.Login(ctx, &proto.LoginRequest{Email: "nobody@x.com", Password: "p1"})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())
	assert.Equal(t, "invalid email or password", st.Message())
}
