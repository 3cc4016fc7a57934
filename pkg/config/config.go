// Package config loads GreenRoute settings from an optional YAML or JSON file
// with GREENROUTE_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides. Nested keys are separated by a
// double underscore, e.g. GREENROUTE_SERVER__HTTP_ADDR.
const EnvPrefix = "GREENROUTE_"

type Config struct {
	Table      TableConfig      `json:"table"`
	Server     ServerConfig     `json:"server"`
	Monitoring MonitoringConfig `json:"monitoring"`
	Routing    RoutingConfig    `json:"routing"`
	Advisor    AdvisorConfig    `json:"advisor"`
	Tracing    TracingConfig    `json:"tracing"`
	Logging    LoggingConfig    `json:"logging"`

	Registration RegistrationConfig `json:"registration"`
}

// TableConfig points at the reference emission table
type TableConfig struct {
	Path string `json:"path"`
}

// ServerConfig controls the tool server transports
type ServerConfig struct {
	EnableHTTP bool   `json:"enable_http"`
	HTTPOnly   bool   `json:"http_only"`
	HTTPAddr   string `json:"http_addr"`
	BaseURL    string `json:"base_url"`
	AuthType   string `json:"auth_type"` // none or bearer
	AuthToken  string `json:"auth_token"`
	// Per-client request limit on the HTTP transport, 0 disables it
	ClientRPS   float64 `json:"client_rps"`
	ClientBurst int     `json:"client_burst"`
}

type MonitoringConfig struct {
	Enabled       bool          `json:"enabled"`
	Addr          string        `json:"addr"`
	CheckInterval time.Duration `json:"check_interval"`
}

// RoutingConfig configures the geocoder and the road router
type RoutingConfig struct {
	OSRMURL        string        `json:"osrm_url"`
	NominatimURL   string        `json:"nominatim_url"`
	CountryCodes   string        `json:"country_codes"`
	UserAgent      string        `json:"user_agent"`
	Timeout        time.Duration `json:"timeout"`
	NominatimRPS   float64       `json:"nominatim_rps"`
	NominatimBurst int           `json:"nominatim_burst"`
	OSRMRPS        float64       `json:"osrm_rps"`
	OSRMBurst      int           `json:"osrm_burst"`
	CacheSize      int           `json:"cache_size"`
	CacheTTL       time.Duration `json:"cache_ttl"`
	Snap           bool          `json:"snap"`
}

type AdvisorConfig struct {
	APIKey      string        `json:"api_key"`
	BaseURL     string        `json:"base_url"`
	Model       string        `json:"model"`
	Temperature float32       `json:"temperature"`
	Timeout     time.Duration `json:"timeout"`
}

type TracingConfig struct {
	Endpoint    string  `json:"endpoint"`
	Insecure    bool    `json:"insecure"`
	Environment string  `json:"environment"`
	SampleRatio float64 `json:"sample_ratio"`
}

// RegistrationConfig announces the server to a service registry
type RegistrationConfig struct {
	Enabled           bool          `json:"enabled"`
	RegistryURL       string        `json:"registry_url"`
	ServiceName       string        `json:"service_name"`
	ServiceURL        string        `json:"service_url"` // defaults to the HTTP address
	InternalURL       string        `json:"internal_url"`
	HeartbeatInterval time.Duration `json:"heartbeat_interval"`
}

type LoggingConfig struct {
	Level string `json:"level"` // debug, info, warn, error
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr:    ":7082",
			AuthType:    "none",
			ClientRPS:   10,
			ClientBurst: 20,
		},
		Monitoring: MonitoringConfig{
			Enabled:       true,
			Addr:          ":9090",
			CheckInterval: 30 * time.Second,
		},
		Routing: RoutingConfig{
			OSRMURL:        "https://router.project-osrm.org",
			NominatimURL:   "https://nominatim.openstreetmap.org",
			Timeout:        30 * time.Second,
			NominatimRPS:   1,
			NominatimBurst: 1,
			OSRMRPS:        1,
			OSRMBurst:      1,
			CacheSize:      256,
			CacheTTL:       24 * time.Hour,
			Snap:           true,
		},
		Advisor: AdvisorConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
		Tracing: TracingConfig{
			SampleRatio: 1,
		},
		Logging: LoggingConfig{Level: "info"},
		Registration: RegistrationConfig{
			ServiceName:       "greenroute",
			HeartbeatInterval: 30 * time.Second,
		},
	}
}

// Load reads path (when non-empty) over the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps GREENROUTE_ROUTING__OSRM_URL to routing.osrm_url
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks values that would otherwise fail later at runtime
func (c Config) Validate() error {
	var errs []error
	switch c.Server.AuthType {
	case "none", "":
	case "bearer":
		if c.Server.AuthToken == "" {
			errs = append(errs, errors.New("server.auth_token is required for bearer auth"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown server.auth_type %q", c.Server.AuthType))
	}
	if c.Server.HTTPOnly && !c.Server.EnableHTTP {
		errs = append(errs, errors.New("server.http_only requires server.enable_http"))
	}
	if c.Routing.NominatimRPS < 0 || c.Routing.OSRMRPS < 0 || c.Server.ClientRPS < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if c.Monitoring.Enabled && c.Monitoring.CheckInterval <= 0 {
		errs = append(errs, errors.New("monitoring.check_interval must be positive"))
	}
	if c.Registration.Enabled && c.Registration.RegistryURL == "" {
		errs = append(errs, errors.New("registration.registry_url is required when registration is enabled"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio %v is outside [0, 1]", c.Tracing.SampleRatio))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}
