package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the roommatch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Matching  MatchingConfig  `yaml:"matching"`
	Scrape    ScrapeConfig    `yaml:"scrape"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings for the roommatchd daemon.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds settings for the store backing the embedding cache.
// Empty addrs disables caching; embeddings are then recomputed per run.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	Dimensions        int     `yaml:"dimensions"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unthrottled
	Burst             int     `yaml:"burst"`
}

// MatchingConfig holds the tunable policy parameters of the matcher.
// These are calibrated constants, never derived from data.
type MatchingConfig struct {
	TextWeight      float64 `yaml:"text_weight"`
	AreaWeight      float64 `yaml:"area_weight"`
	OccupancyWeight float64 `yaml:"occupancy_weight"`
	Threshold       float64 `yaml:"threshold"`
	SelfMarker      string  `yaml:"self_marker"`
	AreaFallback    float64 `yaml:"area_fallback"` // default area for competitor rows missing one
	Parallelism     int     `yaml:"parallelism"`
}

// ScrapeConfig holds booking.com scraper settings.
type ScrapeConfig struct {
	LinksFile          string  `yaml:"links_file"`
	OutputDir          string  `yaml:"output_dir"`
	DaysAhead          int     `yaml:"days_ahead"`
	BatchDays          int     `yaml:"batch_days"`
	NavigateTimeoutSec int     `yaml:"navigate_timeout_sec"`
	RequestsPerMinute  float64 `yaml:"requests_per_minute"`
	Headless           bool    `yaml:"headless"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Matching runs synchronously inside the request; leave headroom
		// for embedding calls.
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Burst <= 0 {
		c.Embedding.Burst = 5
	}
	if c.Matching.TextWeight == 0 && c.Matching.AreaWeight == 0 && c.Matching.OccupancyWeight == 0 {
		c.Matching.TextWeight = 0.6
		c.Matching.AreaWeight = 0.2
		c.Matching.OccupancyWeight = 0.2
	}
	if c.Matching.Threshold == 0 {
		c.Matching.Threshold = 0.84
	}
	if c.Matching.AreaFallback == 0 {
		c.Matching.AreaFallback = 14
	}
	if c.Matching.Parallelism <= 0 {
		c.Matching.Parallelism = 8
	}
	if c.Scrape.DaysAhead <= 0 {
		c.Scrape.DaysAhead = 180
	}
	if c.Scrape.BatchDays <= 0 {
		c.Scrape.BatchDays = 7
	}
	if c.Scrape.NavigateTimeoutSec <= 0 {
		c.Scrape.NavigateTimeoutSec = 60
	}
	if c.Scrape.RequestsPerMinute <= 0 {
		c.Scrape.RequestsPerMinute = 10
	}
	if c.Scrape.OutputDir == "" {
		c.Scrape.OutputDir = "scraping_results"
	}
}

// Validate checks the configuration for correctness. Matching parameters
// are rejected eagerly here, before any scoring work happens.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	m := c.Matching
	sum := m.TextWeight + m.AreaWeight + m.OccupancyWeight
	if sum < 1-1e-6 || sum > 1+1e-6 {
		return fmt.Errorf("matching weights must sum to 1, got %v", sum)
	}
	for name, w := range map[string]float64{
		"text_weight":      m.TextWeight,
		"area_weight":      m.AreaWeight,
		"occupancy_weight": m.OccupancyWeight,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("matching.%s must be in [0,1], got %v", name, w)
		}
	}
	if m.Threshold < 0 || m.Threshold > 1 {
		return fmt.Errorf("matching.threshold must be in [0,1], got %v", m.Threshold)
	}
	if m.AreaFallback < 0 {
		return fmt.Errorf("matching.area_fallback must be >= 0, got %v", m.AreaFallback)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
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
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
