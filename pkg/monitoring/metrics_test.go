package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsInitialization(t *testing.T) {
	metrics := []prometheus.Collector{
		ExtractionsTotal,
		ExtractionDuration,
		RoadsExtracted,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ExternalServiceRequestsTotal,
		ExternalServiceRequestDuration,
		RateLimitExceeded,
		RateLimitWaitTime,
		CacheHits,
		CacheMisses,
		CacheSize,
		ErrorsTotal,
		SystemInfo,
		GoRoutines,
		MemoryUsage,
		GCRuns,
	}

	for _, metric := range metrics {
		if metric == nil {
			t.Error("Metric is nil")
		}
	}
}

func TestRecordExtraction(t *testing.T) {
	ExtractionsTotal.Reset()

	RecordExtraction("area", "success", 100*time.Millisecond, 1200)

	if got := testutil.ToFloat64(ExtractionsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("Expected 1 successful extraction, got %v", got)
	}

	RecordExtraction("bbox", "error", 50*time.Millisecond, 0)

	if got := testutil.ToFloat64(ExtractionsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected 1 failed extraction, got %v", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("/api/city-roads", 200, 10*time.Millisecond)
	RecordHTTPRequest("/api/city-roads", 404, 5*time.Millisecond)
	RecordHTTPRequest("/api/city-roads", 500, 5*time.Millisecond)

	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/city-roads", "2xx")); got != 1 {
		t.Errorf("Expected 1 2xx request, got %v", got)
	}
	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/city-roads", "4xx")); got != 1 {
		t.Errorf("Expected 1 4xx request, got %v", got)
	}
	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/city-roads", "5xx")); got != 1 {
		t.Errorf("Expected 1 5xx request, got %v", got)
	}
}

func TestHTTPStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{429, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		if got := httpStatusClass(tt.status); got != tt.want {
			t.Errorf("httpStatusClass(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestRecordExternalServiceRequest(t *testing.T) {
	ExternalServiceRequestsTotal.Reset()

	RecordExternalServiceRequest("nominatim", "geocode", 100*time.Millisecond, true)

	if got := testutil.ToFloat64(ExternalServiceRequestsTotal.WithLabelValues("nominatim", "geocode", "success")); got != 1 {
		t.Errorf("Expected 1 successful request, got %v", got)
	}

	RecordExternalServiceRequest("nominatim", "geocode", 200*time.Millisecond, false)

	if got := testutil.ToFloat64(ExternalServiceRequestsTotal.WithLabelValues("nominatim", "geocode", "error")); got != 1 {
		t.Errorf("Expected 1 failed request, got %v", got)
	}
}

func TestCacheMetrics(t *testing.T) {
	CacheHits.Reset()
	CacheMisses.Reset()

	RecordCacheHit("extraction")
	RecordCacheHit("extraction")
	RecordCacheMiss("extraction")
	UpdateCacheSize("extraction", 42)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("extraction")); got != 2 {
		t.Errorf("Expected 2 cache hits, got %v", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("extraction")); got != 1 {
		t.Errorf("Expected 1 cache miss, got %v", got)
	}
	if got := testutil.ToFloat64(CacheSize.WithLabelValues("extraction")); got != 42 {
		t.Errorf("Expected cache size 42, got %v", got)
	}
}

func TestRateLimitMetrics(t *testing.T) {
	RateLimitExceeded.Reset()

	RecordRateLimitExceeded("overpass")
	RecordRateLimitWait("overpass", 500*time.Millisecond)

	if got := testutil.ToFloat64(RateLimitExceeded.WithLabelValues("overpass")); got != 1 {
		t.Errorf("Expected 1 rate limit event, got %v", got)
	}
}

func TestErrorMetrics(t *testing.T) {
	ErrorsTotal.Reset()

	RecordError("pipeline", "city_not_found")

	if got := testutil.ToFloat64(ErrorsTotal.WithLabelValues("pipeline", "city_not_found")); got != 1 {
		t.Errorf("Expected 1 error, got %v", got)
	}
}
