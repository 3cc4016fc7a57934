package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sahilcoder4/greenroute-repo/pkg/app"
	"github.com/Sahilcoder4/greenroute-repo/pkg/config"
	"github.com/Sahilcoder4/greenroute-repo/pkg/monitoring"
	"github.com/Sahilcoder4/greenroute-repo/pkg/registration"
	"github.com/Sahilcoder4/greenroute-repo/pkg/server"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tracing"
	ver "github.com/Sahilcoder4/greenroute-repo/pkg/version"
)

var (
	configPath      string
	tablePath       string
	showVersionFlag bool
	debug           bool
	jsonLogs        bool
	generateConfig  string
	mergeOnly       bool

	// HTTP transport flags, override the config file when set
	enableHTTP bool
	httpOnly   bool
	httpAddr   string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flag.StringVar(&tablePath, "table", "", "Path to the reference emission table CSV (overrides table.path)")
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&jsonLogs, "json-logs", false, "Log as JSON")
	flag.StringVar(&generateConfig, "generate-config", "", "Write an MCP client config entry for this server to the given .json path")
	flag.BoolVar(&mergeOnly, "merge-only", false, "Merge into an existing client config instead of overwriting it")

	flag.BoolVar(&enableHTTP, "enable-http", false, "Enable HTTP+SSE transport (in addition to stdio)")
	flag.BoolVar(&httpOnly, "http-only", false, "Run HTTP transport only, skip stdio (requires --enable-http)")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP server address")
}

func main() {
	flag.Parse()

	if showVersionFlag {
		fmt.Println(ver.String())
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	level, err := app.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if debug {
		level = slog.LevelDebug
	}
	logger := app.NewLogger(os.Stderr, level, jsonLogs)
	slog.SetDefault(logger)

	if generateConfig != "" {
		if err := generateClientConfig(generateConfig, configPath, mergeOnly); err != nil {
			logger.Error("failed to generate config", "error", err)
			os.Exit(1)
		}
		logger.Info("generated MCP client config", "path", generateConfig)
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func applyFlags(cfg *config.Config) {
	if tablePath != "" {
		cfg.Table.Path = tablePath
	}
	if enableHTTP {
		cfg.Server.EnableHTTP = true
	}
	if httpOnly {
		cfg.Server.HTTPOnly = true
	}
	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracing(ctx, ver.BuildVersion, tracing.Options{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		Environment: cfg.Tracing.Environment,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		// tracing is optional
		logger.Error("failed to initialize tracing", "error", err)
	} else {
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				logger.Error("error shutting down tracing", "error", err)
			}
		}()
	}

	svc, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	registry := svc.Registry(logger)

	logger.Info("starting GreenRoute MCP server",
		"version", ver.BuildVersion,
		"table_rows", svc.Table.Len(),
		"osrm", cfg.Routing.OSRMURL,
		"nominatim", cfg.Routing.NominatimURL,
		"advisor", svc.Advisor != nil,
		"http_enabled", cfg.Server.EnableHTTP,
		"monitoring_enabled", cfg.Monitoring.Enabled)

	var healthChecker *monitoring.HealthChecker
	if cfg.Monitoring.Enabled {
		healthChecker = monitoring.NewHealthChecker(monitoring.ServiceName)
		defer healthChecker.Shutdown()

		healthChecker.SetTableRows(svc.Table.Len())
		healthChecker.StartSystemMetrics(cfg.Monitoring.CheckInterval)
		healthChecker.Watch(tracing.ServiceOSRM, cfg.Monitoring.CheckInterval, svc.OSRM.Ping)
		healthChecker.Watch(tracing.ServiceNominatim, cfg.Monitoring.CheckInterval, svc.Geocoder.Ping)

		startMonitoringServer(ctx, cfg.Monitoring.Addr, healthChecker, logger)
	}

	s, err := server.NewServer(registry, logger)
	if err != nil {
		return err
	}

	if cfg.Server.EnableHTTP {
		transport := server.NewHTTPTransport(s.GetMCPServer(), server.NewHandler(registry, logger), server.HTTPTransportConfig{
			Addr:           cfg.Server.HTTPAddr,
			BaseURL:        cfg.Server.BaseURL,
			AuthType:       cfg.Server.AuthType,
			AuthToken:      cfg.Server.AuthToken,
			SSEEndpoint:    "/sse",
			MsgEndpoint:    "/message",
			RateLimit:      cfg.Server.ClientRPS,
			RateBurst:      cfg.Server.ClientBurst,
			MaxRequestSize: 10 << 20,
		}, logger)
		if healthChecker != nil {
			transport.SetHealthChecker(healthChecker)
		}

		go func() {
			if err := transport.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP transport error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := transport.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown HTTP transport", "error", err)
			}
		}()
	}

	if cfg.Registration.Enabled {
		reg := registration.NewClient(registrationConfig(cfg, registry.GetToolNames(), svc.Table.Regions()), nil, logger)
		reg.Start(ctx)
		defer func() {
			deregCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			reg.Stop(deregCtx)
		}()
	}

	// stdio blocks unless HTTP is enabled; with HTTP it runs alongside, or
	// not at all in http-only mode
	switch {
	case !cfg.Server.EnableHTTP:
		logger.Info("transport_enabled", "type", "stdio", "mode", "blocking")
		return s.RunWithContext(ctx)
	case cfg.Server.HTTPOnly:
		logger.Info("server_ready", "transports", []string{"http"}, "http_only", true)
	default:
		go func() {
			logger.Info("transport_enabled", "type", "stdio", "mode", "background")
			if err := s.RunWithContext(ctx); err != nil {
				logger.Error("stdio transport error", "error", err)
			}
		}()
		logger.Info("server_ready", "transports", []string{"stdio", "http"})
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}

func startMonitoringServer(ctx context.Context, addr string, hc *monitoring.HealthChecker, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", hc.HealthHandler())
	mux.HandleFunc("/ready", hc.ReadinessHandler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting monitoring server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("monitoring server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown monitoring server", "error", err)
		}
	}()
}

func registrationConfig(cfg *config.Config, toolNames, regions []string) registration.Config {
	serviceURL := cfg.Registration.ServiceURL
	if serviceURL == "" && cfg.Server.EnableHTTP {
		host := cfg.Server.HTTPAddr
		if strings.HasPrefix(host, ":") {
			host = "localhost" + host
		}
		serviceURL = "http://" + host
	}
	return registration.Config{
		RegistryURL:       cfg.Registration.RegistryURL,
		ServiceName:       cfg.Registration.ServiceName,
		ServiceURL:        serviceURL,
		InternalURL:       cfg.Registration.InternalURL,
		Version:           ver.BuildVersion,
		Tools:             toolNames,
		Regions:           regions,
		HeartbeatInterval: cfg.Registration.HeartbeatInterval,
		Metadata: map[string]any{
			"transport": map[string]bool{"stdio": !cfg.Server.HTTPOnly, "http": cfg.Server.EnableHTTP},
		},
	}
}

// generateClientConfig writes an mcpServers entry that launches this binary
func generateClientConfig(path, serverConfig string, mergeOnly bool) error {
	if path == "" {
		return fmt.Errorf("config path cannot be empty")
	}
	if !strings.HasSuffix(path, ".json") {
		return fmt.Errorf("config file must have .json extension")
	}

	cleanPath := filepath.Clean(path)
	if err := validateSafePath(cleanPath); err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	existing := map[string]any{}
	if mergeOnly {
		if data, err := os.ReadFile(cleanPath); err == nil {
			if err := json.Unmarshal(data, &existing); err != nil {
				return fmt.Errorf("failed to parse existing config: %w", err)
			}
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	entry := map[string]any{"command": exe}
	if serverConfig != "" {
		abs, err := filepath.Abs(serverConfig)
		if err != nil {
			return fmt.Errorf("resolve server config: %w", err)
		}
		entry["args"] = []string{"--config", abs}
	}

	servers, _ := existing["mcpServers"].(map[string]any)
	if servers == nil {
		servers = map[string]any{}
	}
	servers["greenroute"] = entry
	existing["mcpServers"] = servers

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// validateSafePath rejects absolute paths and paths outside the working directory
func validateSafePath(path string) error {
	if filepath.IsAbs(path) {
		return fmt.Errorf("absolute paths are not allowed")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	relPath, err := filepath.Rel(cwd, absPath)
	if err != nil {
		return fmt.Errorf("failed to determine relative path: %w", err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected: %s", relPath)
	}
	return nil
}
