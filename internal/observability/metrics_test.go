package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	metrics := NewMetrics()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	metrics.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "staybook_commission_entries_recorded_total 0") {
		t.Fatalf("expected body to contain staybook_commission_entries_recorded_total, got: %s", body)
	}
}

func TestDomainCounters(t *testing.T) {
	metrics := NewMetrics()
	metrics.CommissionRecorded()
	metrics.CommissionRecorded()
	metrics.CommissionStatusChanged("paid")
	metrics.SummaryCacheRequest("hit")
	metrics.SummaryCacheRequest("miss")
	metrics.SummaryCacheRequest("hit")

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()

	for _, want := range []string{
		"staybook_commission_entries_recorded_total 2",
		`staybook_commission_status_changes_total{status="paid"} 1`,
		`staybook_summary_cache_requests_total{result="hit"} 2`,
		`staybook_summary_cache_requests_total{result="miss"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output, got: %s", want, body)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.CommissionRecorded()
	metrics.CommissionStatusChanged("paid")
	metrics.SummaryCacheRequest("hit")

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	metricsRR := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(metricsRR, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	metricsBody := metricsRR.Body.String()
	if !strings.Contains(metricsBody, "http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", metricsBody)
	}
	if !strings.Contains(metricsBody, "http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", metricsBody)
	}
}
