// Package registration announces a running GreenRoute server to a service
// registry and keeps the entry alive with heartbeats. Registration is
// optional: failures are logged and never stop the server.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tracing"
)

// DefaultHeartbeatInterval is the default interval between heartbeats.
const DefaultHeartbeatInterval = 30 * time.Second

// Config holds the configuration for service registration.
type Config struct {
	RegistryURL string // e.g. "http://registry:7083"
	ServiceName string
	ServiceURL  string // externally reachable base URL
	InternalURL string // optional, for container networks
	Version     string

	// Tools lists the MCP tools the server exposes
	Tools []string
	// Regions lists the regions covered by the loaded reference table
	Regions  []string
	Metadata map[string]any

	HeartbeatInterval time.Duration
}

// Request is the body sent to the registry on every heartbeat
type Request struct {
	Name              string         `json:"name"`
	Type              string         `json:"type"`
	URL               string         `json:"url"`
	HealthURL         string         `json:"health_url"`
	InternalURL       string         `json:"internal_url,omitempty"`
	InternalHealthURL string         `json:"internal_health_url,omitempty"`
	Version           string         `json:"version"`
	Capabilities      []string       `json:"capabilities"`
	Tools             []string       `json:"tools,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// Response is the registry's acknowledgement
type Response struct {
	Status     string `json:"status"`
	Name       string `json:"name"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// Capabilities advertised for every GreenRoute server
var Capabilities = []string{"emission-factors", "trip-emissions", "fuel-comparison", "routing"}

// Client registers with the registry and sends heartbeats until stopped.
type Client struct {
	cfg    Config
	http   *core.Client
	logger *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.RWMutex
	registered bool
}

// NewClient creates a registration client. A nil http client gets a fresh
// core.Client with a short timeout.
func NewClient(cfg Config, client *core.Client, logger *slog.Logger) *Client {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if client == nil {
		client = core.NewClient(5 * time.Second)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: client, logger: logger.With("component", "registration")}
}

// Start registers and begins the heartbeat loop. It returns immediately.
func (c *Client) Start(ctx context.Context) {
	if c.cfg.RegistryURL == "" {
		c.logger.Warn("service registration enabled but no registry URL configured")
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.heartbeatLoop(ctx)
}

// Stop deregisters, best effort, and waits for the heartbeat loop to end.
func (c *Client) Stop(ctx context.Context) {
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.wg.Wait()
	c.deregister(ctx)
}

// IsRegistered reports whether the last heartbeat was acknowledged
func (c *Client) IsRegistered() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registered
}

func (c *Client) heartbeatLoop(ctx context.Context) {
	defer c.wg.Done()

	c.heartbeat(ctx)

	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.heartbeat(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// heartbeat registers once; a heartbeat cut short by Stop keeps the last state
func (c *Client) heartbeat(ctx context.Context) {
	err := c.register(ctx)
	if ctx.Err() != nil {
		return
	}
	c.setRegistered(err == nil)
}

// Payload builds the registration body from the configuration
func (c *Client) Payload() Request {
	base := strings.TrimRight(c.cfg.ServiceURL, "/")
	req := Request{
		Name:         c.cfg.ServiceName,
		Type:         "mcp",
		URL:          base,
		HealthURL:    base + "/health",
		Version:      c.cfg.Version,
		Capabilities: Capabilities,
		Tools:        c.cfg.Tools,
		Metadata:     map[string]any{},
	}
	if c.cfg.InternalURL != "" {
		internal := strings.TrimRight(c.cfg.InternalURL, "/")
		req.InternalURL = internal
		req.InternalHealthURL = internal + "/health"
	}
	for k, v := range c.cfg.Metadata {
		req.Metadata[k] = v
	}
	if len(c.cfg.Regions) > 0 {
		req.Metadata["regions"] = c.cfg.Regions
	}
	return req
}

func (c *Client) register(ctx context.Context) error {
	body, err := json.Marshal(c.Payload())
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.RegistryURL, "/") + "/api/register"
	resp, err := c.http.Do(ctx, tracing.ServiceRegistry, "register", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, core.NoRetry)
	if err != nil {
		c.logger.Debug("registration failed (registry may be unavailable)", "error", err)
		return err
	}
	defer resp.Body.Close()

	var ack Response
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		c.logger.Warn("failed to decode registration response", "error", err)
		return err
	}

	if !c.IsRegistered() {
		c.logger.Info("registered with service registry",
			"name", c.cfg.ServiceName,
			"ttl_seconds", ack.TTLSeconds)
	}
	return nil
}

func (c *Client) deregister(ctx context.Context) {
	if !c.IsRegistered() {
		return
	}
	defer c.setRegistered(false)

	endpoint := strings.TrimRight(c.cfg.RegistryURL, "/") + "/api/register/" + url.PathEscape(c.cfg.ServiceName)
	resp, err := c.http.Do(ctx, tracing.ServiceRegistry, "deregister", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	}, core.NoRetry)
	if err != nil {
		c.logger.Debug("deregistration failed", "error", err)
		return
	}
	resp.Body.Close()
	c.logger.Info("deregistered from service registry", "name", c.cfg.ServiceName)
}

func (c *Client) setRegistered(registered bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registered = registered
}
