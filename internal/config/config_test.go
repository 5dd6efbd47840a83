package config

import (
	"os"
	"strings"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Matching.TextWeight != 0.6 || cfg.Matching.AreaWeight != 0.2 || cfg.Matching.OccupancyWeight != 0.2 {
		t.Errorf("default weights = (%v, %v, %v), want (0.6, 0.2, 0.2)",
			cfg.Matching.TextWeight, cfg.Matching.AreaWeight, cfg.Matching.OccupancyWeight)
	}
	if cfg.Matching.Threshold != 0.84 {
		t.Errorf("default threshold = %v, want 0.84", cfg.Matching.Threshold)
	}
	if cfg.Matching.AreaFallback != 14 {
		t.Errorf("default area fallback = %v, want 14", cfg.Matching.AreaFallback)
	}
	if cfg.Scrape.DaysAhead != 180 || cfg.Scrape.BatchDays != 7 {
		t.Errorf("scrape defaults = (%d, %d), want (180, 7)", cfg.Scrape.DaysAhead, cfg.Scrape.BatchDays)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.HTTP.Port)
	}
}

func TestApplyDefaults_KeepsExplicitWeights(t *testing.T) {
	cfg := Config{Matching: MatchingConfig{TextWeight: 0.5, AreaWeight: 0.25, OccupancyWeight: 0.25}}
	cfg.ApplyDefaults()
	if cfg.Matching.TextWeight != 0.5 {
		t.Errorf("explicit weights overwritten: got %v", cfg.Matching.TextWeight)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults pass", func(*Config) {}, ""},
		{"weights not summing", func(c *Config) { c.Matching.AreaWeight = 0.3 }, "sum to 1"},
		{"negative weight", func(c *Config) {
			c.Matching.TextWeight = 1.1
			c.Matching.AreaWeight = -0.1
			c.Matching.OccupancyWeight = 0
		}, "must be in [0,1]"},
		{"threshold above one", func(c *Config) { c.Matching.Threshold = 1.2 }, "threshold"},
		{"threshold negative", func(c *Config) { c.Matching.Threshold = -0.1 }, "threshold"},
		{"area fallback negative", func(c *Config) { c.Matching.AreaFallback = -1 }, "area_fallback"},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("ROOMMATCH_TEST_KEY", "secret")
	defer os.Unsetenv("ROOMMATCH_TEST_KEY")

	in := []byte("api_key: ${ROOMMATCH_TEST_KEY}\nmodel: ${ROOMMATCH_TEST_MISSING:-fallback}\n")
	out := string(expandEnvVars(in))

	if !strings.Contains(out, "api_key: secret") {
		t.Errorf("env var not expanded: %s", out)
	}
	if !strings.Contains(out, "model: fallback") {
		t.Errorf("default not applied: %s", out)
	}
}
