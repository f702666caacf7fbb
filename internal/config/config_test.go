package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Upstream.Dataset != "dpe03existant" || cfg.Upstream.BaseURL != "https://data.ademe.fr" {
		t.Errorf("upstream = %+v", cfg.Upstream)
	}
	if cfg.Map.DefaultLat != 46.6 || cfg.Map.DefaultLon != 2.4 || cfg.Map.DefaultZoom != 6 {
		t.Errorf("map = %+v", cfg.Map)
	}
	if cfg.Map.PointZoom != 16 || cfg.Map.PaddingPx != 40 {
		t.Errorf("map = %+v", cfg.Map)
	}
	if cfg.Quota.Action != "warn" {
		t.Errorf("quota action = %q", cfg.Quota.Action)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidate_InvalidQuotaAction(t *testing.T) {
	cfg := validConfig()
	cfg.Quota.Action = "invalid_action"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid quota action")
	}
	expected := `quota.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"reject action", func(c *Config) { c.Quota.Action = "reject" }, ""},
		{"port out of range", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"bad base url", func(c *Config) { c.Upstream.BaseURL = "data.ademe.fr" }, "upstream.base_url"},
		{"negative rate", func(c *Config) { c.Upstream.RatePerSec = -1 }, "rate_per_sec"},
		{"db without addrs", func(c *Config) { c.Database.Enabled = true }, "database.addrs"},
		{"db disabled without addrs", func(c *Config) { c.Database.Enabled = false }, ""},
		{"db unknown driver", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Addrs = []string{"localhost:6379"}
			c.Database.Driver = "memcached"
		}, "database.driver"},
		{"negative quota", func(c *Config) { c.Quota.DailyRequestLimit = -5 }, "quota limits"},
		{"map center", func(c *Config) { c.Map.DefaultLat = 120 }, "map default center"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("DPEX_TEST_PORT", "9191")

	cfg, err := Parse([]byte(`
http:
  port: ${DPEX_TEST_PORT}
upstream:
  dataset: ${DPEX_TEST_DATASET:-dpe03existant}
quota:
  daily_request_limit: 1000
  action: reject
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9191 {
		t.Errorf("port = %d, want 9191", cfg.HTTP.Port)
	}
	if cfg.Upstream.Dataset != "dpe03existant" {
		t.Errorf("dataset = %q", cfg.Upstream.Dataset)
	}
	if cfg.Quota.DailyRequestLimit != 1000 || cfg.Quota.Action != "reject" {
		t.Errorf("quota = %+v", cfg.Quota)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := Parse([]byte("quota:\n  action: maybe\n")); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_LocalFile(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.Upstream.Dataset == "" {
		t.Error("dataset should be set")
	}
}
