// Package metrics exposes Prometheus counters for authentication outcomes.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dtroode/identity-server/internal/model"
)

const (
	OpRegister     = "register"
	OpLogin        = "login"
	OpRefresh      = "refresh"
	OpLogout       = "logout"
	OpAuthenticate = "authenticate"

	resultSuccess = "success"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	operations      *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "identity",
			Name:      "auth_operations_total",
			Help:      "Authentication operations by outcome.",
		}, []string{"operation", "result"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "identity",
			Name:      "request_duration_seconds",
			Help:      "Request latency by transport, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport", "route", "status"}),
	}
}

// Observe counts one operation. The result label is "success" or the error kind.
func (m *Metrics) Observe(operation string, err error) {
	if m == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = string(model.KindOf(err))
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// ObserveHTTP records the latency of one HTTP request.
func (m *Metrics) ObserveHTTP(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues("http", route, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveGRPC records the latency of one gRPC call.
func (m *Metrics) ObserveGRPC(method string, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues("grpc", method, code).Observe(d.Seconds())
}
