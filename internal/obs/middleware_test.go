package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/noah-isme/kasir-pos/internal/obs"
)

func newInstrumentedRouter(metrics *obs.HTTPMetrics) http.Handler {
	r := chi.NewRouter()
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	r.Route("/api/v1/terminals/{id}", func(tr chi.Router) {
		tr.Post("/settlement/confirm", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
		tr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestRequestsLabelledByRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("kasir", []float64{1, 10}, registry)
	router := newInstrumentedRouter(metrics)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/terminals/abc123/settlement/confirm", nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rr.Code)
	}

	// Labels use the chi pattern, never the concrete terminal id.
	total := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodPost, "/api/v1/terminals/{id}/settlement/confirm", "201"))
	if total != 1 {
		t.Fatalf("expected confirm counter to be 1, got %v", total)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/terminals/abc123/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	if samples := testutil.CollectAndCount(metrics.ReqDur); samples == 0 {
		t.Fatalf("expected latency samples")
	}
	if inFlight := testutil.ToFloat64(metrics.InFlight); inFlight != 0 {
		t.Fatalf("expected no in-flight requests after completion, got %v", inFlight)
	}
}

func TestRoutePatternContextRoundTrip(t *testing.T) {
	ctx := obs.WithRoutePattern(t.Context(), "/api/v1/products")
	if got := obs.RoutePatternFromContext(ctx); got != "/api/v1/products" {
		t.Fatalf("unexpected pattern %q", got)
	}
	if got := obs.RoutePatternFromContext(t.Context()); got != "" {
		t.Fatalf("expected empty pattern on bare context, got %q", got)
	}
}
