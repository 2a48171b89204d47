// Package osm provides clients for the OpenStreetMap geocoding and
// road-data services used by the extraction pipeline.
package osm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/roadsketch/roadsketch/pkg/tracing"
)

const (
	// DefaultUserAgent is the default User-Agent string. Nominatim's usage
	// policy requires an identifying client marker on every request.
	DefaultUserAgent = "roadsketch/0.1.0"

	// NominatimBaseURL is the default geocoding service endpoint
	NominatimBaseURL = "https://nominatim.openstreetmap.org"

	// OverpassBaseURL is the default road-data service endpoint
	OverpassBaseURL = "https://overpass-api.de/api/interpreter"
)

var (
	// Global HTTP client with connection pooling
	httpClient *http.Client

	// Rate limiters for each service
	nominatimLimiter *rate.Limiter
	overpassLimiter  *rate.Limiter

	// User agent string
	userAgent     string
	userAgentLock sync.RWMutex
)

// init initializes the global HTTP client and rate limiters
func init() {
	httpClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		// Overpass queries for large cities can legitimately take a while;
		// the query itself carries a 90s server-side budget.
		Timeout: 120 * time.Second,
	}

	initRateLimiters()
	SetUserAgent(DefaultUserAgent)
}

// initRateLimiters initializes the rate limiters with default values
func initRateLimiters() {
	// Default to 1 request per second with burst of 1
	nominatimLimiter = rate.NewLimiter(rate.Limit(1), 1)
	overpassLimiter = rate.NewLimiter(rate.Limit(1), 1)
}

// UpdateNominatimRateLimits updates the Nominatim rate limiter
func UpdateNominatimRateLimits(rps float64, burst int) {
	nominatimLimiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// UpdateOverpassRateLimits updates the Overpass rate limiter
func UpdateOverpassRateLimits(rps float64, burst int) {
	overpassLimiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// SetUserAgent sets the User-Agent string
func SetUserAgent(ua string) {
	userAgentLock.Lock()
	defer userAgentLock.Unlock()
	userAgent = ua
}

// GetUserAgent returns the current User-Agent string
func GetUserAgent() string {
	userAgentLock.RLock()
	defer userAgentLock.RUnlock()
	return userAgent
}

// hostFromURL extracts the host from a URL string
func hostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}

// waitForRateLimit waits for the appropriate rate limiter based on the request URL
func waitForRateLimit(ctx context.Context, req *http.Request) error {
	host := req.URL.Host

	var service string
	var limiter *rate.Limiter

	switch host {
	case hostFromURL(NominatimBaseURL):
		service = tracing.ServiceNominatim
		limiter = nominatimLimiter
	case hostFromURL(OverpassBaseURL):
		service = tracing.ServiceOverpass
		limiter = overpassLimiter
	default:
		return nil // No rate limiting for unknown hosts
	}

	if !limiter.Allow() {
		startWait := time.Now()

		tracing.AddEvent(ctx, "rate_limit_wait",
			trace.WithAttributes(
				attribute.String(tracing.AttrRateLimitService, service),
			),
		)

		err := limiter.Wait(ctx)

		waitDuration := time.Since(startWait)
		tracing.SetAttributes(ctx,
			attribute.String(tracing.AttrRateLimitService, service),
			attribute.Int64(tracing.AttrRateLimitWaitMs, waitDuration.Milliseconds()),
		)

		if err != nil {
			return err
		}
	}

	return nil
}

// DoRequest performs an HTTP request with rate limiting
func DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	// Set User-Agent header
	req.Header.Set("User-Agent", GetUserAgent())

	// Wait for rate limit
	if err := waitForRateLimit(ctx, req); err != nil {
		return nil, err
	}

	// Perform request
	return httpClient.Do(req)
}

// Health check functions for external services

// CheckNominatimHealth checks if the Nominatim service is available
func CheckNominatimHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, NominatimBaseURL+"/status", nil)
	if err != nil {
		return fmt.Errorf("failed to create nominatim health check request: %w", err)
	}

	resp, err := DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("nominatim health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim health check returned status %d", resp.StatusCode)
	}

	return nil
}

// CheckOverpassHealth checks if the Overpass API is available
func CheckOverpassHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, OverpassBaseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create overpass health check request: %w", err)
	}

	// Add a simple query to check if the service is responsive
	req.URL.RawQuery = "data=[out:json];out meta;"

	resp, err := DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("overpass health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("overpass health check returned status %d", resp.StatusCode)
	}

	return nil
}
