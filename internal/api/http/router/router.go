package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/identity-server/internal/api/http/handler"
	"github.com/dtroode/identity-server/internal/api/http/middleware"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/metrics"
	"github.com/dtroode/identity-server/internal/model"
)

// Router builds the REST API of the identity service.
type Router struct {
	authService    handler.AuthService
	profileService handler.ProfileService
	authenticator  middleware.Authenticator
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	logger         *logger.Logger
}

// New creates new HTTP Router instance. metrics and gatherer may be nil;
// /metrics is only mounted when gatherer is set.
func New(
	authService handler.AuthService,
	profileService handler.ProfileService,
	authenticator middleware.Authenticator,
	metrics *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		profileService: profileService,
		authenticator:  authenticator,
		metrics:        metrics,
		gatherer:       gatherer,
		logger:         logger,
	}
}

// Register mounts every route on a new gin engine.
func (r *Router) Register() *gin.Engine {
	engine := gin.New()

	logging := middleware.NewLogging(r.logger, r.metrics)
	engine.Use(logging.Handle, gin.CustomRecovery(r.recoverPanic))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if r.gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	authHandler := handler.NewAuth(r.authService, r.logger)
	auth := engine.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	authenticate := middleware.NewAuthenticate(r.authenticator, r.logger)
	profileHandler := handler.NewProfile(r.profileService, r.logger)
	user := engine.Group("/api/user", authenticate.Handle)
	user.GET("/me", profileHandler.Get)
	user.PUT("/me", profileHandler.Update)

	return engine
}

func (r *Router) recoverPanic(c *gin.Context, recovered any) {
	r.logger.Error("HTTP handler panicked",
		"path", c.Request.URL.Path,
		"panic", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": model.ErrInternal.Message,
		"code":  string(model.KindInternal),
	})
}
