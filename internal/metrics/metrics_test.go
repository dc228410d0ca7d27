package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v1/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bookings/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/v1/bookings/{id}", "404"))
	assert.Equal(t, 2.0, got)
}

func TestObserveDecision(t *testing.T) {
	m := New()
	m.ObserveDecision("approve", "ok")
	m.ObserveDecision("approve", "ok")
	m.ObserveDecision("deny", "past_date")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.decisions.WithLabelValues("approve", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("deny", "past_date")))
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveTrip("start", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `trip_transitions_total{action="start",outcome="ok"} 1`)
}

func TestMiddlewareFoldsUnmatchedPaths(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v1/bookings", func(w http.ResponseWriter, r *http.Request) {})

	for _, p := range []string{"/wp-login.php", "/v1/nope/1", "/v1/nope/2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpRequestsTotal))
}
