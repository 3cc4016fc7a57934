// Package app assembles the GreenRoute services from configuration.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Sahilcoder4/greenroute-repo/pkg/advisor"
	"github.com/Sahilcoder4/greenroute-repo/pkg/config"
	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
	"github.com/Sahilcoder4/greenroute-repo/pkg/monitoring"
	"github.com/Sahilcoder4/greenroute-repo/pkg/routing"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tools"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tracing"
	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

// ErrNoTable is returned when no reference table path is configured
var ErrNoTable = errors.New("no reference table configured (table.path or GREENROUTE_TABLE__PATH)")

// Services holds the wired collaborators of a GreenRoute process
type Services struct {
	Config     *config.Config
	Table      *emissions.Table
	Resolver   *emissions.Resolver
	Aggregator *trip.Aggregator
	HTTP       *core.Client
	OSRM       *routing.OSRMClient
	Geocoder   *routing.NominatimGeocoder
	Planner    *routing.Planner
	// Advisor is nil when no API key is available
	Advisor advisor.Advisor
}

// New loads the reference table and builds the routing and advisor clients.
// Nothing is contacted over the network.
func New(cfg *config.Config, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Table.Path == "" {
		return nil, ErrNoTable
	}

	table, err := emissions.LoadTableFile(cfg.Table.Path)
	if err != nil {
		return nil, err
	}
	monitoring.SetReferenceTableRows(table.Len())
	logger.Info("reference table loaded",
		"path", cfg.Table.Path,
		"rows", table.Len(),
		"regions", table.Regions())

	resolver := emissions.NewResolver(table, emissions.WithLogger(logger))

	client := core.NewClient(cfg.Routing.Timeout)
	if cfg.Routing.UserAgent != "" {
		client.UserAgent = cfg.Routing.UserAgent
	}
	client.SetRateLimit(tracing.ServiceNominatim, cfg.Routing.NominatimRPS, cfg.Routing.NominatimBurst)
	client.SetRateLimit(tracing.ServiceOSRM, cfg.Routing.OSRMRPS, cfg.Routing.OSRMBurst)

	osrmOpts := routing.DefaultOSRMOptions()
	osrmOpts.BaseURL = cfg.Routing.OSRMURL
	osrmOpts.CacheSize = cfg.Routing.CacheSize
	osrm, err := routing.NewOSRMClient(client, osrmOpts)
	if err != nil {
		return nil, err
	}

	geoOpts := routing.DefaultNominatimOptions()
	geoOpts.BaseURL = cfg.Routing.NominatimURL
	geoOpts.CountryCodes = cfg.Routing.CountryCodes
	geoOpts.CacheSize = cfg.Routing.CacheSize
	geoOpts.CacheTTL = cfg.Routing.CacheTTL
	geocoder := routing.NewNominatimGeocoder(client, geoOpts)

	var snapper routing.Snapper
	if cfg.Routing.Snap {
		snapper = osrm
	}

	s := &Services{
		Config:     cfg,
		Table:      table,
		Resolver:   resolver,
		Aggregator: trip.NewAggregator(resolver),
		HTTP:       client,
		OSRM:       osrm,
		Geocoder:   geocoder,
		Planner:    routing.NewPlanner(geocoder, osrm, snapper, logger),
	}

	chat := advisor.NewChatClient(advisor.Config{
		APIKey:      cfg.Advisor.APIKey,
		BaseURL:     cfg.Advisor.BaseURL,
		Model:       cfg.Advisor.Model,
		Temperature: cfg.Advisor.Temperature,
		Timeout:     cfg.Advisor.Timeout,
	}, nil, logger)
	if chat.Configured() {
		s.Advisor = chat
	} else {
		logger.Info("emissions advisor disabled", "reason", "no API key")
	}

	return s, nil
}

// Registry returns a tool registry over the services
func (s *Services) Registry(logger *slog.Logger) *tools.Registry {
	deps := tools.Dependencies{
		Resolver: s.Resolver,
		Router:   s.Planner,
	}
	if s.Advisor != nil {
		deps.Advisor = s.Advisor
	}
	return tools.NewRegistry(logger, deps)
}

// ParseLevel maps a configured level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// NewLogger creates the process logger. MCP stdio owns stdout, so callers
// pass stderr.
func NewLogger(w io.Writer, level slog.Level, jsonFormat bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
