package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the dpex service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Database DatabaseConfig `yaml:"database"`
	Quota    QuotaConfig    `yaml:"quota"`
	Map      MapConfig      `yaml:"map"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// UpstreamConfig holds the dataset API settings.
type UpstreamConfig struct {
	BaseURL    string  `yaml:"base_url"`
	Dataset    string  `yaml:"dataset"`
	TimeoutSec int     `yaml:"timeout_sec"`
	RatePerSec float64 `yaml:"rate_per_sec"` // 0 = unlimited
	Burst      int     `yaml:"burst"`
	UserAgent  string  `yaml:"user_agent"`
}

// DatabaseConfig holds the counter store connection settings.
// Counters stay in memory when Enabled is false.
type DatabaseConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Driver           string   `yaml:"driver"` // redis
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// QuotaConfig holds the upstream request budget.
type QuotaConfig struct {
	DailyRequestLimit   int64  `yaml:"daily_request_limit"`   // 0 = unlimited
	MonthlyRequestLimit int64  `yaml:"monthly_request_limit"` // 0 = unlimited
	Action              string `yaml:"action"`                // "reject" | "warn" (default)
}

// MapConfig holds the map view policy.
type MapConfig struct {
	DefaultLat  float64 `yaml:"default_lat"`
	DefaultLon  float64 `yaml:"default_lon"`
	DefaultZoom int     `yaml:"default_zoom"`
	PointZoom   int     `yaml:"point_zoom"`
	PaddingPx   int     `yaml:"padding_px"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if any, is loaded first; variables
// already set in the environment win.
func Load(env string) (Config, error) {
	_ = godotenv.Load()

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data, decodes it and applies
// defaults and validation.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "https://data.ademe.fr"
	}
	if c.Upstream.Dataset == "" {
		c.Upstream.Dataset = "dpe03existant"
	}
	if c.Upstream.TimeoutSec <= 0 {
		c.Upstream.TimeoutSec = 15
	}
	if c.Upstream.Burst <= 0 {
		c.Upstream.Burst = 1
	}
	if c.Upstream.UserAgent == "" {
		c.Upstream.UserAgent = "dpex"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Quota.Action == "" {
		c.Quota.Action = "warn"
	}
	if c.Map.DefaultLat == 0 && c.Map.DefaultLon == 0 {
		c.Map.DefaultLat, c.Map.DefaultLon = 46.6, 2.4
	}
	if c.Map.DefaultZoom <= 0 {
		c.Map.DefaultZoom = 6
	}
	if c.Map.PointZoom <= 0 {
		c.Map.PointZoom = 16
	}
	if c.Map.PaddingPx <= 0 {
		c.Map.PaddingPx = 40
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		return fmt.Errorf("upstream.base_url must be an http(s) URL, got %q", c.Upstream.BaseURL)
	}
	if c.Upstream.RatePerSec < 0 {
		return fmt.Errorf("upstream.rate_per_sec must not be negative, got %v", c.Upstream.RatePerSec)
	}
	if c.Database.Enabled {
		if c.Database.Driver != "redis" {
			return fmt.Errorf("database.driver must be \"redis\", got %q", c.Database.Driver)
		}
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required when database.enabled is true")
		}
	}
	if c.Quota.DailyRequestLimit < 0 || c.Quota.MonthlyRequestLimit < 0 {
		return fmt.Errorf("quota limits must not be negative")
	}
	switch c.Quota.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf("quota.action must be \"warn\" or \"reject\", got %q", c.Quota.Action)
	}
	if c.Map.DefaultLat < -90 || c.Map.DefaultLat > 90 || c.Map.DefaultLon < -180 || c.Map.DefaultLon > 180 {
		return fmt.Errorf("map default center out of range: %v,%v", c.Map.DefaultLat, c.Map.DefaultLon)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests and go run from a subdirectory.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
