package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector_RecordsAndExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCreditIssued()
	c.RecordCreditIssued()
	c.RecordIssuanceRejected("installment_window")
	c.RecordHTTPStatus(201)
	c.RecordSessionsCleaned(3)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "creditman_credits_issued_total 2") {
		t.Errorf("credits_issued not exposed, body:\n%s", body)
	}
	if !strings.Contains(body, `creditman_issuance_rejected_total{reason="installment_window"} 1`) {
		t.Errorf("issuance_rejected not exposed, body:\n%s", body)
	}
	if !strings.Contains(body, `creditman_http_status_total{status_code="201"} 1`) {
		t.Errorf("http_status not exposed, body:\n%s", body)
	}
	if !strings.Contains(body, "creditman_sessions_cleaned_total 3") {
		t.Errorf("sessions_cleaned not exposed, body:\n%s", body)
	}
}

func TestSetupMetricsRoute_ServesMetricsPath(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHTTPMetricsMiddleware_RecordsStatusAndLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	mw := NewHTTPMetricsMiddleware(c)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/customers/99", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	if !strings.Contains(body, `creditman_http_status_total{status_code="404"} 1`) {
		t.Errorf("status 404 not recorded, body:\n%s", body)
	}
	if !strings.Contains(body, "creditman_request_latency_seconds_count 1") {
		t.Errorf("latency not recorded, body:\n%s", body)
	}
}
