package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObserveURLs(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.ObserveURLs("https", 2)
	m.ObserveURLs("https", 1)
	m.ObserveURLs("ftp", 0)

	if got := testutil.ToFloat64(m.URLsRedacted.WithLabelValues("https")); got != 3 {
		t.Errorf("https count = %v, want 3", got)
	}
	if got := testutil.CollectAndCount(m.URLsRedacted); got != 1 {
		t.Errorf("series = %d, want 1 (zero observations are skipped)", got)
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("scrubtest", reg)
	m.Requests.WithLabelValues("/v1/redact", "200").Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `scrubtest_requests_total{code="200",route="/v1/redact"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}
