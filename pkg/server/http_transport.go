package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/monitoring"
	"github.com/Sahilcoder4/greenroute-repo/pkg/version"
)

// Supported AuthType values
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
)

// HTTPTransportConfig holds configuration for the HTTP transport
type HTTPTransportConfig struct {
	Addr           string  `json:"addr"`             // HTTP server address (e.g., ":7082")
	BaseURL        string  `json:"base_url"`         // Base URL for service discovery
	AuthType       string  `json:"auth_type"`        // "bearer" or "none"
	AuthToken      string  `json:"auth_token"`       // Bearer token
	SSEEndpoint    string  `json:"sse_endpoint"`     // SSE endpoint path (default: "/sse")
	MsgEndpoint    string  `json:"msg_endpoint"`     // Message endpoint path (default: "/message")
	RateLimit      float64 `json:"rate_limit"`       // Requests per second per IP (0 = disabled)
	RateBurst      int     `json:"rate_burst"`       // Burst size for rate limiter
	MaxRequestSize int64   `json:"max_request_size"` // Maximum request body size in bytes
	TLSCertFile    string  `json:"tls_cert_file"`
	TLSKeyFile     string  `json:"tls_key_file"`
}

// DefaultHTTPTransportConfig returns sensible defaults
func DefaultHTTPTransportConfig() HTTPTransportConfig {
	return HTTPTransportConfig{
		Addr:           ":7082",
		AuthType:       AuthNone,
		SSEEndpoint:    "/sse",
		MsgEndpoint:    "/message",
		RateLimit:      10,
		RateBurst:      20,
		MaxRequestSize: 10 << 20, // 10 MB
	}
}

// HTTPTransport serves MCP over HTTP+SSE next to the REST tool API and the
// health endpoints
type HTTPTransport struct {
	config        HTTPTransportConfig
	logger        *slog.Logger
	sseServer     *mcpserver.SSEServer
	api           http.Handler
	mux           *http.ServeMux
	httpSrv       *http.Server
	rateLimiter   *RateLimiter
	healthChecker *monitoring.HealthChecker
	mu            sync.RWMutex
}

// NewHTTPTransport creates a new HTTP transport instance. api may be nil to
// serve MCP only.
func NewHTTPTransport(mcpServer *mcpserver.MCPServer, api http.Handler, config HTTPTransportConfig, logger *slog.Logger) *HTTPTransport {
	if logger == nil {
		logger = slog.Default()
	}

	if config.AuthType == AuthBearer {
		if err := core.ValidateAuthToken(config.AuthToken); err != nil {
			logger.Warn("weak authentication token detected", "error", err.Error())
		}
	}

	sseServer := mcpserver.NewSSEServer(
		mcpServer,
		mcpserver.WithSSEEndpoint(config.SSEEndpoint),
		mcpserver.WithMessageEndpoint(config.MsgEndpoint),
		mcpserver.WithBaseURL(config.BaseURL),
	)

	transport := &HTTPTransport{
		config:    config,
		logger:    logger,
		sseServer: sseServer,
		api:       api,
		mux:       http.NewServeMux(),
	}
	if config.RateLimit > 0 {
		transport.rateLimiter = NewRateLimiter(rate.Limit(config.RateLimit), config.RateBurst)
	}

	transport.setupRoutes()
	return transport
}

// SetHealthChecker sets the health checker for the HTTP transport
func (t *HTTPTransport) SetHealthChecker(hc *monitoring.HealthChecker) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.healthChecker = hc
}

func (t *HTTPTransport) setupRoutes() {
	t.mux.HandleFunc("GET /{$}", t.handleServiceDiscovery)

	// probes stay outside auth and rate limiting
	t.mux.HandleFunc("GET /health", t.probe(func(hc *monitoring.HealthChecker) http.HandlerFunc { return hc.HealthHandler() }))
	t.mux.HandleFunc("GET /ready", t.probe(func(hc *monitoring.HealthChecker) http.HandlerFunc { return hc.ReadinessHandler() }))
	t.mux.HandleFunc("GET /live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"alive": true})
	})

	sse := t.protect(t.sseServer.SSEHandler())
	msg := t.protect(t.sseServer.MessageHandler())
	for _, p := range []string{t.config.SSEEndpoint, t.config.SSEEndpoint + "/"} {
		t.mux.Handle(p, sse)
	}
	for _, p := range []string{t.config.MsgEndpoint, t.config.MsgEndpoint + "/"} {
		t.mux.Handle(p, msg)
	}

	if t.api != nil {
		api := t.protect(t.api)
		t.mux.Handle(APIPrefix, api)
		t.mux.Handle(strings.TrimSuffix(APIPrefix, "/"), api)
	}
}

func (t *HTTPTransport) protect(next http.Handler) http.Handler {
	h := t.authMiddleware(next)
	if t.rateLimiter != nil {
		h = t.rateLimiter.Middleware(h)
	}
	return h
}

// rpcError is the JSON-RPC envelope MCP clients expect on auth failures
type rpcError struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Error   struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (t *HTTPTransport) authMiddleware(next http.Handler) http.Handler {
	if t.config.AuthType == "" || t.config.AuthType == AuthNone {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := "unknown auth type " + t.config.AuthType
		if t.config.AuthType == AuthBearer {
			reason = core.AuthenticateBearer(r.Header.Get("Authorization"), t.config.AuthToken)
		}
		if reason == "" {
			next.ServeHTTP(w, r)
			return
		}

		t.logger.Warn("rejected unauthenticated request",
			"request_id", RequestID(r.Context()),
			"client", clientIP(r),
			"path", r.URL.Path,
			"reason", reason)

		resp := rpcError{JSONRPC: "2.0"}
		resp.Error.Code = -32602
		resp.Error.Message = "Authentication required"
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, resp)
	})
}

type discovery struct {
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Transport    string            `json:"transport"`
	Endpoints    map[string]string `json:"endpoints"`
	Capabilities []string          `json:"capabilities"`
	AuthRequired bool              `json:"auth_required"`
}

// handleServiceDiscovery tells MCP clients where the SSE and REST endpoints live
func (t *HTTPTransport) handleServiceDiscovery(w http.ResponseWriter, r *http.Request) {
	base := t.config.BaseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}

	d := discovery{
		Service:   ServerName,
		Version:   version.BuildVersion,
		Transport: "HTTP+SSE",
		Endpoints: map[string]string{
			"sse":     base + t.config.SSEEndpoint,
			"message": base + t.config.MsgEndpoint,
		},
		Capabilities: []string{"tools", "prompts"},
		AuthRequired: t.config.AuthType == AuthBearer,
	}
	if t.api != nil {
		d.Endpoints["api"] = base + APIPrefix
	}
	writeJSON(w, http.StatusOK, d)
}

// probe serves the checker's handler when one is attached, else a bare ok
func (t *HTTPTransport) probe(pick func(*monitoring.HealthChecker) http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.mu.RLock()
		hc := t.healthChecker
		t.mu.RUnlock()
		if hc != nil {
			pick(hc)(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Handler returns the full middleware chain, as served by Start
func (t *HTTPTransport) Handler() http.Handler {
	handler := http.Handler(t.mux)
	handler = TracingMiddleware()(handler)
	handler = LoggingMiddleware(t.logger)(handler)
	handler = SecurityHeaders(handler)
	if t.config.MaxRequestSize > 0 {
		handler = RequestSizeLimiter(t.config.MaxRequestSize)(handler)
	}
	return handler
}

// Start begins serving HTTP requests
func (t *HTTPTransport) Start() error {
	t.mu.Lock()

	if t.httpSrv != nil {
		t.mu.Unlock()
		return core.NewError(core.ErrInternalError, "HTTP transport already started").
			WithGuidance("The HTTP transport is already running. Stop it before starting again.")
	}

	t.httpSrv = &http.Server{
		Addr:         t.config.Addr,
		Handler:      t.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	srv := t.httpSrv
	tls := t.config.TLSCertFile != "" && t.config.TLSKeyFile != ""

	t.logger.Info("starting HTTP transport",
		"addr", t.config.Addr,
		"sse_endpoint", t.config.SSEEndpoint,
		"message_endpoint", t.config.MsgEndpoint,
		"api", t.api != nil,
		"auth_type", t.config.AuthType,
		"rate_limit", t.config.RateLimit,
		"tls_enabled", tls)
	t.mu.Unlock()

	if tls {
		return srv.ListenAndServeTLS(t.config.TLSCertFile, t.config.TLSKeyFile)
	}
	return srv.ListenAndServe()
}

// Shutdown gracefully stops the HTTP transport
func (t *HTTPTransport) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rateLimiter != nil {
		t.rateLimiter.Stop()
		t.rateLimiter = nil
	}
	if t.httpSrv == nil {
		return nil
	}

	t.logger.Info("shutting down HTTP transport")

	if err := t.sseServer.Shutdown(ctx); err != nil {
		t.logger.Error("failed to shutdown SSE server", "error", err)
	}

	err := t.httpSrv.Shutdown(ctx)
	t.httpSrv = nil
	return err
}
