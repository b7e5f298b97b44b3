package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// ContextUserIDKey is the gin context key holding the authenticated user ID.
const ContextUserIDKey = "userID"

// Authenticator resolves the user behind an Authorization header value.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (uuid.UUID, error)
}

// Authenticate guards routes that require a valid access token.
type Authenticate struct {
	authenticator Authenticator
	logger        *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(authenticator Authenticator, logger *logger.Logger) *Authenticate {
	return &Authenticate{authenticator: authenticator, logger: logger}
}

// Handle rejects the request with 401 unless the Authorization header
// carries a valid bearer token. On success the user ID is stored under
// ContextUserIDKey.
func (m *Authenticate) Handle(c *gin.Context) {
	userID, err := m.authenticator.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		m.logger.Debug("Authenticate middleware: request rejected",
			"path", c.Request.URL.Path,
			"error", err.Error())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": model.MessageOf(err),
			"code":  string(model.KindUnauthenticated),
		})
		return
	}

	c.Set(ContextUserIDKey, userID)
	c.Next()
}

// UserID returns the user ID stored by Handle.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(ContextUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}
