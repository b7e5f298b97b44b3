package middleware

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// Authenticator resolves the user behind an Authorization header value.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects user ID into context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(authenticator Authenticator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{authenticator: authenticator, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the authorization metadata, validates the token and returns
// a context with the user ID.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	var authorization string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("authorization"); len(values) > 0 {
			authorization = values[0]
		}
	}

	userID, err := m.authenticator.Authenticate(ctx, authorization)
	if err != nil {
		m.logger.Debug("Authenticate middleware: request rejected",
			"error", err.Error())
		return nil, status.Error(codes.Unauthenticated, model.MessageOf(err))
	}

	return m.contextManager.SetUserIDToContext(ctx, userID), nil
}
