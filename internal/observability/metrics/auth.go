package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/beblocky/dashboard/internal/domain/gate"
	obserrors "github.com/beblocky/dashboard/internal/observability/errors"
)

const defaultNamespace = "beblocky"

// AuthMetrics holds the Prometheus collectors for the gate, resolver and role router.
// A nil *AuthMetrics is valid and records nothing.
type AuthMetrics struct {
	gateDecisions   *prometheus.CounterVec
	resolutions     *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	dashboardViews  *prometheus.CounterVec
}

// Config configures NewAuthMetrics.
type Config struct {
	// Namespace is the metrics namespace (default: "beblocky").
	Namespace string
	// Registry is the registerer to use (default: prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
}

// NewAuthMetrics registers the auth collectors with cfg.Registry.
func NewAuthMetrics(cfg Config) *AuthMetrics {
	if cfg.Namespace == "" {
		cfg.Namespace = defaultNamespace
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(cfg.Registry)

	return &AuthMetrics{
		gateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Request gate decisions by outcome.",
		}, []string{"decision"}),

		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "session",
			Name:      "resolutions_total",
			Help:      "Session resolutions by outcome.",
		}, []string{"outcome"}),

		resolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "session",
			Name:      "resolve_duration_seconds",
			Help:      "Time spent verifying a token and loading its profile.",
			Buckets:   prometheus.DefBuckets,
		}),

		dashboardViews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "dashboard",
			Name:      "routes_total",
			Help:      "Role router results by view or failure outcome.",
		}, []string{"view"}),
	}
}

// ObserveGate counts one gate decision.
func (m *AuthMetrics) ObserveGate(d gate.Decision) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(d.Kind.String()).Inc()
}

// ObserveResolution counts one resolver call and its latency.
func (m *AuthMetrics) ObserveResolution(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(obserrors.Outcome(err)).Inc()
	m.resolveDuration.Observe(elapsed.Seconds())
}

// ObserveRoute counts one role-router result. view is empty on error.
func (m *AuthMetrics) ObserveRoute(view string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		view = obserrors.Outcome(err)
	}
	m.dashboardViews.WithLabelValues(view).Inc()
}
