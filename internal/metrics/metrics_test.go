package metrics_test

import (
	"errors"
	"io"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/metrics"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(metrics.Middleware(m, logger.NewLoggerWithWriter(io.Discard)))
	r.Get("/api/events/{eventId}/likes", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/"+id+"/likes", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	got := testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/api/events/{eventId}/likes", "200"))
	assert.Equal(t, float64(2), got)
}

func TestMiddlewareCollapsesUnmatchedPaths(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(metrics.Middleware(m, logger.NewLoggerWithWriter(io.Discard)))
	r.Route("/api", func(r chi.Router) {
		r.Get("/events", func(w http.ResponseWriter, r *http.Request) {})
	})

	for _, path := range []string{"/x/1", "/x/2", "/x/3", "/api/nope/a", "/api/nope/b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestCounter))
	got := testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "unmatched", "404"))
	assert.Equal(t, float64(5), got)
}

func TestDomainCounters(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	m.ObserveToggle("added")
	m.ObserveToggle("added")
	m.ObserveToggle("removed")
	m.ObserveComment("create", nil)
	m.ObserveComment("update", errors.New("boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.LikeToggles.WithLabelValues("added")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LikeToggles.WithLabelValues("removed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CommentOps.WithLabelValues("update", "error")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveToggle("added")
	m.ObserveComment("create", nil)
	m.StreamOpened()
	m.StreamClosed()
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.ObserveToggle("added")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "engagement_like_toggles_total")
}
