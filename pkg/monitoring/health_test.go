package monitoring

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewHealthChecker(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	if hc.serviceName != "test-service" {
		t.Errorf("Expected service name 'test-service', got %s", hc.serviceName)
	}

	if hc.version != "1.0.0" {
		t.Errorf("Expected version '1.0.0', got %s", hc.version)
	}

	if hc.connections == nil {
		t.Error("Connections map should be initialized")
	}
}

func TestUpdateConnection(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	hc.UpdateConnection("test-conn", "connected", 100, nil)

	hc.mu.RLock()
	conn, exists := hc.connections["test-conn"]
	hc.mu.RUnlock()

	if !exists {
		t.Fatal("Connection should exist")
	}
	if conn.Status != "connected" {
		t.Errorf("Expected status 'connected', got %s", conn.Status)
	}
	if conn.Latency != 100 {
		t.Errorf("Expected latency 100, got %d", conn.Latency)
	}
	if conn.LastError != "" {
		t.Errorf("Expected no error, got %s", conn.LastError)
	}
}

func TestUpdateConnectionWithError(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	hc.UpdateConnection("test-conn", "error", 200, errors.New("test error"))

	hc.mu.RLock()
	conn, exists := hc.connections["test-conn"]
	hc.mu.RUnlock()

	if !exists {
		t.Fatal("Connection should exist")
	}
	if conn.Status != "error" {
		t.Errorf("Expected status 'error', got %s", conn.Status)
	}
	if conn.LastError != "test error" {
		t.Errorf("Expected error 'test error', got %s", conn.LastError)
	}
}

func TestGetHealthStatus(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	// Healthy with no connections
	health := hc.GetHealth()
	if health.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", health.Status)
	}

	// Still healthy with one good connection
	hc.UpdateConnection("conn1", "connected", 100, nil)
	health = hc.GetHealth()
	if health.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", health.Status)
	}

	// One of two in error: degraded
	hc.UpdateConnection("conn2", "error", 200, errors.New("test error"))
	health = hc.GetHealth()
	if health.Status != "degraded" {
		t.Errorf("Expected status 'degraded', got %s", health.Status)
	}

	// Majority in error: unhealthy
	hc.UpdateConnection("conn3", "disconnected", 300, errors.New("disconnected"))
	health = hc.GetHealth()
	if health.Status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got %s", health.Status)
	}
}

func TestGetHealthFields(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	health := hc.GetHealth()

	if health.Service != "test-service" {
		t.Errorf("Expected service 'test-service', got %s", health.Service)
	}
	if health.Version != "1.0.0" {
		t.Errorf("Expected version '1.0.0', got %s", health.Version)
	}
	if health.Uptime < 0 {
		t.Error("Uptime should not be negative")
	}
	if health.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}
	if health.Connections == nil {
		t.Error("Connections should not be nil")
	}
	if health.Metrics == nil {
		t.Fatal("Metrics should not be nil")
	}
	for _, key := range []string{"goroutines", "memory_alloc_mb", "cpu_count"} {
		if _, exists := health.Metrics[key]; !exists {
			t.Errorf("Metrics should contain %s", key)
		}
	}
}

func TestHealthHandler(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	handler := hc.HealthHandler()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %s", ct)
	}

	var health ServiceHealth
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %s", health.Status)
	}
}

func TestHealthHandlerUnhealthy(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	hc.UpdateConnection("conn1", "error", 100, errors.New("test error"))
	hc.UpdateConnection("conn2", "disconnected", 200, errors.New("disconnected"))

	handler := hc.HealthHandler()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var health ServiceHealth
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if health.Status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got %s", health.Status)
	}
}

func TestReadinessHandler(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	handler := hc.ReadinessHandler()

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode readiness response: %v", err)
	}
	if ready, ok := response["ready"].(bool); !ok || !ready {
		t.Error("Expected ready to be true")
	}
}

func TestReadinessHandlerUnhealthy(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	hc.UpdateConnection("conn1", "error", 100, errors.New("down"))

	handler := hc.ReadinessHandler()

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	handler := hc.LivenessHandler()

	req := httptest.NewRequest("GET", "/live", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode liveness response: %v", err)
	}
	if alive, ok := response["alive"].(bool); !ok || !alive {
		t.Error("Expected alive to be true")
	}
	if _, exists := response["uptime"]; !exists {
		t.Error("Expected uptime field")
	}
}

func TestConnectionMonitorSuccess(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	checkFunc := func() error { return nil }

	monitor := NewConnectionMonitor("test-monitor", hc, checkFunc, time.Second)
	defer monitor.Stop()

	monitor.Start()

	// The monitor performs an initial check before its first tick.
	conn := waitForConnection(t, hc, "test-monitor")
	if conn.Status != "connected" {
		t.Errorf("Expected status 'connected', got %s", conn.Status)
	}
}

func TestConnectionMonitorError(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	checkFunc := func() error { return errors.New("test error") }

	monitor := NewConnectionMonitor("test-monitor", hc, checkFunc, time.Second)
	defer monitor.Stop()

	monitor.Start()

	conn := waitForConnection(t, hc, "test-monitor")
	if conn.Status != "error" {
		t.Errorf("Expected status 'error', got %s", conn.Status)
	}
	if conn.LastError != "test error" {
		t.Errorf("Expected error 'test error', got %s", conn.LastError)
	}
}

func waitForConnection(t *testing.T, hc *HealthChecker, name string) ConnStatus {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hc.mu.RLock()
		conn, exists := hc.connections[name]
		hc.mu.RUnlock()
		if exists {
			return *conn
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("connection %q never reported", name)
	return ConnStatus{}
}

func TestUnhealthyStatusTransitionBackToHealthy(t *testing.T) {
	hc := NewHealthChecker("test-service", "1.0.0")
	defer hc.Shutdown()

	hc.UpdateConnection("conn1", "error", 100, errors.New("down"))
	if health := hc.GetHealth(); health.Status == "healthy" {
		t.Error("expected degraded status while connection is in error")
	}

	hc.UpdateConnection("conn1", "connected", 50, nil)
	if health := hc.GetHealth(); health.Status != "healthy" {
		t.Errorf("Expected status 'healthy' after recovery, got %s", health.Status)
	}
}
