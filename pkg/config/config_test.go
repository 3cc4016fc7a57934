package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "greenroute.yaml", `table:
  path: "data/glec.csv"
server:
  enable_http: true
  http_addr: ":8080"
  auth_type: bearer
  auth_token: secret
routing:
  country_codes: "in"
  timeout: 10s
  osrm_rps: 5
advisor:
  model: "local-model"
tracing:
  sample_ratio: 0.25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"table.path", cfg.Table.Path, "data/glec.csv"},
		{"server.enable_http", cfg.Server.EnableHTTP, true},
		{"server.http_addr", cfg.Server.HTTPAddr, ":8080"},
		{"server.auth_token", cfg.Server.AuthToken, "secret"},
		{"routing.country_codes", cfg.Routing.CountryCodes, "in"},
		{"routing.timeout", cfg.Routing.Timeout, 10 * time.Second},
		{"routing.osrm_rps", cfg.Routing.OSRMRPS, 5.0},
		{"advisor.model", cfg.Advisor.Model, "local-model"},
		{"tracing.sample_ratio", cfg.Tracing.SampleRatio, 0.25},
		// untouched defaults survive
		{"routing.nominatim_rps", cfg.Routing.NominatimRPS, 1.0},
		{"monitoring.addr", cfg.Monitoring.Addr, ":9090"},
		{"advisor.base_url", cfg.Advisor.BaseURL, "https://api.openai.com/v1"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "greenroute.json", `{"table":{"path":"t.csv"},"logging":{"level":"debug"}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Table.Path != "t.csv" || cfg.Logging.Level != "debug" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.HTTPAddr != ":7082" || !cfg.Monitoring.Enabled || cfg.Routing.CacheTTL != 24*time.Hour {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "greenroute.yaml", "table:\n  path: from-file.csv\n")
	t.Setenv("GREENROUTE_TABLE__PATH", "from-env.csv")
	t.Setenv("GREENROUTE_ROUTING__OSRM_URL", "http://osrm.local:5000")
	t.Setenv("GREENROUTE_SERVER__CLIENT_BURST", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Table.Path != "from-env.csv" {
		t.Errorf("env should override file, got %s", cfg.Table.Path)
	}
	if cfg.Routing.OSRMURL != "http://osrm.local:5000" {
		t.Errorf("unexpected osrm url %s", cfg.Routing.OSRMURL)
	}
	if cfg.Server.ClientBurst != 7 {
		t.Errorf("unexpected client burst %d", cfg.Server.ClientBurst)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    string
		wantErr string
	}{
		{"unsupported format", "c.toml", "x = 1", "unsupported config format"},
		{"bearer without token", "c.yaml", "server:\n  auth_type: bearer\n", "auth_token"},
		{"unknown auth", "c.yaml", "server:\n  auth_type: basic\n", "auth_type"},
		{"http only", "c.yaml", "server:\n  http_only: true\n", "http_only"},
		{"sample ratio", "c.yaml", "tracing:\n  sample_ratio: 2\n", "sample_ratio"},
		{"log level", "c.yaml", "logging:\n  level: loud\n", "logging.level"},
		{"registration without registry", "c.yaml", "registration:\n  enabled: true\n", "registry_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
