package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ms-engagement/internal/logger"
)

const namespace = "engagement"

// unmatchedRoute labels requests no chi route matched, keeping the route label bounded.
const unmatchedRoute = "unmatched"

// Metrics holds Prometheus metrics for the engagement service. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	LikeToggles      *prometheus.CounterVec
	CommentOps       *prometheus.CounterVec
	StreamClients    prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics registers every collector on reg. Tests pass a fresh prometheus.NewRegistry().
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		LikeToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "like_toggles_total",
				Help:      "Like toggles by resulting action",
			},
			[]string{"action"},
		),
		CommentOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comment_operations_total",
				Help:      "Comment operations by kind and outcome",
			},
			[]string{"op", "outcome"},
		),
		StreamClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "sse",
				Name:      "clients",
				Help:      "Connected live stream clients",
			},
		),
		gatherer: reg,
	}
}

func (m *Metrics) ObserveToggle(action string) {
	if m == nil {
		return
	}
	m.LikeToggles.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveComment(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.CommentOps.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) StreamOpened() {
	if m != nil {
		m.StreamClients.Inc()
	}
}

func (m *Metrics) StreamClosed() {
	if m != nil {
		m.StreamClients.Dec()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// routeLabel is the matched chi pattern. Misses collapse to one label: chi leaves the
// pattern empty at the top level and reports a mount wildcard such as "/api/*" for a
// miss inside a sub-router.
func routeLabel(r *http.Request, status int) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	pattern := rctx.RoutePattern()
	if pattern == "" || (status == http.StatusNotFound && strings.HasSuffix(pattern, "/*")) {
		return unmatchedRoute
	}
	return pattern
}

// Middleware records request count, duration and in-flight gauge per chi route pattern,
// and logs each request.
func Middleware(m *Metrics, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			if m != nil {
				m.RequestsInFlight.Inc()
				defer m.RequestsInFlight.Dec()
			}

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)

			route := routeLabel(r, status)

			if m != nil {
				m.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
				m.RequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())
			}
			log.LogAPI(r.Method, r.URL.Path, strconv.Itoa(status), duration.String())
		})
	}
}
