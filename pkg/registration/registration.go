// Package registration announces this service to an external service
// registry. Registration is optional and fails gracefully - the server
// always functions even when the registry is unreachable.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// DefaultHeartbeatInterval is the default interval between heartbeats.
const DefaultHeartbeatInterval = 30 * time.Second

// DefaultTimeout is the default timeout for HTTP requests.
const DefaultTimeout = 5 * time.Second

// serviceType identifies this service to the registry.
const serviceType = "api"

// Config describes what this service announces to the registry.
type Config struct {
	// RegistryURL is the base URL of the registry endpoint
	RegistryURL string

	// ServiceName is the unique name of this service
	ServiceName string

	// ServiceURL is the external URL where this service is accessible
	ServiceURL string

	// HealthURL is the URL for health checks
	HealthURL string

	// InternalURL is an optional URL for container environments. When
	// set, the internal health URL is derived from it.
	InternalURL string

	// Version is the service version
	Version string

	// Capabilities is a list of capabilities this service provides
	Capabilities []string

	// Tools is a list of MCP tools this service provides, if any
	Tools []string

	// HeartbeatInterval is how often to send heartbeats (default: 30s)
	HeartbeatInterval time.Duration

	// Timeout is the HTTP request timeout (default: 5s)
	Timeout time.Duration
}

// announcement is the wire format for register/heartbeat requests.
type announcement struct {
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	URL               string   `json:"url"`
	HealthURL         string   `json:"health_url"`
	InternalURL       string   `json:"internal_url,omitempty"`
	InternalHealthURL string   `json:"internal_health_url,omitempty"`
	Version           string   `json:"version"`
	Capabilities      []string `json:"capabilities,omitempty"`
	Tools             []string `json:"tools,omitempty"`
}

// ack is the registry's response to an announcement.
type ack struct {
	Status          string    `json:"status"`
	Name            string    `json:"name"`
	TTLSeconds      int       `json:"ttl_seconds"`
	NextHeartbeatBy time.Time `json:"next_heartbeat_by"`
}

// Client announces the service and keeps the registration alive with
// periodic heartbeats.
type Client struct {
	cfg        Config
	body       []byte // marshaled announcement, constant for the process lifetime
	logger     *slog.Logger
	httpClient *http.Client
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	registered bool
	mu         sync.RWMutex
}

// NewClient creates a registration client. The announcement payload is
// fixed at construction time.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	a := announcement{
		Name:         cfg.ServiceName,
		Type:         serviceType,
		URL:          cfg.ServiceURL,
		HealthURL:    cfg.HealthURL,
		InternalURL:  cfg.InternalURL,
		Version:      cfg.Version,
		Capabilities: cfg.Capabilities,
		Tools:        cfg.Tools,
	}
	if cfg.InternalURL != "" {
		a.InternalHealthURL = cfg.InternalURL + "/health"
	}

	body, err := json.Marshal(a)
	if err != nil {
		// announcement contains only strings and string slices
		panic(fmt.Sprintf("marshal announcement: %v", err))
	}

	return &Client{
		cfg:    cfg,
		body:   body,
		logger: logger,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Start begins the registration and heartbeat loop. It is non-blocking
// and returns immediately.
func (c *Client) Start(ctx context.Context) {
	if c.cfg.RegistryURL == "" {
		c.logger.Warn("service registration enabled but no registry URL configured")
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.heartbeatLoop(ctx)
}

// Stop deregisters from the registry and stops the heartbeat loop.
func (c *Client) Stop() {
	if c.cancel == nil {
		return
	}

	c.deregister()
	c.cancel()
	c.wg.Wait()
}

// IsRegistered returns whether the service is currently registered.
func (c *Client) IsRegistered() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registered
}

// heartbeatLoop announces immediately, then on every tick. Each
// announcement doubles as a heartbeat.
func (c *Client) heartbeatLoop(ctx context.Context) {
	defer c.wg.Done()

	c.announce()

	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.announce()
		case <-ctx.Done():
			return
		}
	}
}

// announce sends the registration payload to the registry.
func (c *Client) announce() {
	url := fmt.Sprintf("%s/api/register", c.cfg.RegistryURL)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(c.body))
	if err != nil {
		c.logger.Error("failed to create registration request", "error", err)
		c.setRegistered(false)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("registration failed (registry may be unavailable)", "error", err)
		c.setRegistered(false)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.Warn("registration failed", "status", resp.StatusCode, "body", string(bodyBytes))
		c.setRegistered(false)
		return
	}

	var reply ack
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		c.logger.Warn("failed to decode registration response", "error", err)
		c.setRegistered(false)
		return
	}

	wasRegistered := c.IsRegistered()
	c.setRegistered(true)

	if !wasRegistered {
		c.logger.Info("registered with service registry",
			"name", c.cfg.ServiceName,
			"ttl_seconds", reply.TTLSeconds,
		)
	}
}

// deregister removes this service from the registry.
func (c *Client) deregister() {
	if !c.IsRegistered() {
		return
	}

	url := fmt.Sprintf("%s/api/register/%s", c.cfg.RegistryURL, c.cfg.ServiceName)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, url, nil)
	if err != nil {
		c.logger.Debug("failed to create deregistration request", "error", err)
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("deregistration failed (registry may be unavailable)", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		c.logger.Info("deregistered from service registry", "name", c.cfg.ServiceName)
	}

	c.setRegistered(false)
}

func (c *Client) setRegistered(registered bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registered = registered
}
