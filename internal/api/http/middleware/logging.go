package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/metrics"
)

// Logging logs each HTTP request and records its latency.
type Logging struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewLogging creates a new Logging middleware. metrics may be nil.
func NewLogging(logger *logger.Logger, metrics *metrics.Metrics) *Logging {
	return &Logging{logger: logger, metrics: metrics}
}

func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()

	c.Next()

	duration := time.Since(start)
	status := c.Writer.Status()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	l.metrics.ObserveHTTP(route, status, duration)

	attrs := []any{
		"method", c.Request.Method,
		"route", route,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	}
	if status >= 500 {
		l.logger.Error("HTTP request failed", attrs...)
		return
	}
	l.logger.Info("HTTP request completed", attrs...)
}
