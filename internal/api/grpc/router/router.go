package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/identity-server/internal/api/grpc/handler"
	"github.com/dtroode/identity-server/internal/api/grpc/middleware"
	"github.com/dtroode/identity-server/internal/api/grpc/proto"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/metrics"
	"github.com/dtroode/identity-server/internal/model"
)

// Router builds the gRPC server for the identity service.
type Router struct {
	authService    handler.AuthService
	profileService handler.ProfileService
	authenticator  middleware.Authenticator
	contextManager model.ContextManager
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

// New creates new gRPC Router instance. metrics may be nil.
func New(
	authService handler.AuthService,
	profileService handler.ProfileService,
	authenticator middleware.Authenticator,
	contextManager model.ContextManager,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		profileService: profileService,
		authenticator:  authenticator,
		contextManager: contextManager,
		metrics:        metrics,
		logger:         logger,
	}
}

var protectedMethods = map[string]bool{
	proto.Identity_GetProfile_FullMethodName:    true,
	proto.Identity_UpdateProfile_FullMethodName: true,
}

func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	return protectedMethods[c.FullMethod()]
}

// Register registers the identity service with logging, recovery and
// authentication interceptors.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger, r.metrics)
	authenticate := middleware.NewAuthenticate(r.authenticator, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ForceServerCodec(proto.Codec{}),
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandler(r.recoverPanic)),
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
	)

	identityHandler := handler.NewIdentity(r.authService, r.profileService, r.contextManager, r.logger)
	proto.RegisterIdentityServer(s, identityHandler)

	return s
}

func (r *Router) recoverPanic(p any) error {
	r.logger.Error("gRPC handler panicked",
		"panic", p)
	return status.Error(codes.Internal, model.ErrInternal.Message)
}
