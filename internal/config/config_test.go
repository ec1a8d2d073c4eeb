package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "invalid http port",
			mutate:  func(c *Config) { c.Server.HTTPPort = 0 },
			wantErr: true,
		},
		{
			name:    "negative lambda",
			mutate:  func(c *Config) { c.Analysis.HP.Lambda = -1 },
			wantErr: true,
		},
		{
			name:    "bk high below low",
			mutate:  func(c *Config) { c.Analysis.BK.High = 4 },
			wantErr: true,
		},
		{
			name:    "unknown frequency",
			mutate:  func(c *Config) { c.Analysis.Frequency = "monthly" },
			wantErr: true,
		},
		{
			name:    "no series",
			mutate:  func(c *Config) { c.Analysis.Series = nil },
			wantErr: true,
		},
		{
			name:    "incomplete regression",
			mutate:  func(c *Config) { c.Analysis.Regressions = []RegressionConfig{{Dependent: "real_gdp"}} },
			wantErr: true,
		},
		{
			name: "window end before start",
			mutate: func(c *Config) {
				c.Analysis.Start = "2000-01-01"
				c.Analysis.End = "1990-01-01"
			},
			wantErr: true,
		},
		{
			name: "redis cache without url",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.Type = "redis"
			},
			wantErr: true,
		},
		{
			name:    "disabled cache is not checked",
			mutate:  func(c *Config) { c.Cache.Type = "bogus" },
			wantErr: false,
		},
		{
			name:    "auth enabled without keys",
			mutate:  func(c *Config) { c.Auth.Enabled = true },
			wantErr: true,
		},
		{
			name:    "invalid logging level",
			mutate:  func(c *Config) { c.Logging.Level = "invalid" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Analysis.HP.Lambda != 1600 {
		t.Errorf("expected lambda 1600, got %v", cfg.Analysis.HP.Lambda)
	}

	if cfg.Analysis.BK.K != 12 {
		t.Errorf("expected BK K 12, got %d", cfg.Analysis.BK.K)
	}

	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("expected cache TTL 24h, got %v", cfg.Cache.TTL)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cyclix.yaml")
	content := `
analysis:
  gdp:
    location: fred.csv
    rename:
      GDPC1: real_gdp
  start: "1950-01-01"
  bk:
    k: 8
  regressions:
    - dependent: real_gdp
      independent: gov_prod
output:
  precision: 4
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CYCLIX_ANALYSIS_HP_LAMBDA", "100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Analysis.GDP.Location != "fred.csv" {
		t.Errorf("expected location fred.csv, got %s", cfg.Analysis.GDP.Location)
	}
	if cfg.Analysis.GDP.DateColumn != "date" {
		t.Errorf("expected default date column, got %s", cfg.Analysis.GDP.DateColumn)
	}
	// viper lower-cases map keys
	if cfg.Analysis.GDP.Rename["gdpc1"] != "real_gdp" {
		t.Errorf("expected rename entry, got %v", cfg.Analysis.GDP.Rename)
	}
	if cfg.Analysis.BK.K != 8 || cfg.Analysis.BK.Low != 6 {
		t.Errorf("expected bk k=8 low=6, got %+v", cfg.Analysis.BK)
	}
	if cfg.Analysis.HP.Lambda != 100 {
		t.Errorf("expected env lambda 100, got %v", cfg.Analysis.HP.Lambda)
	}
	if len(cfg.Analysis.Regressions) != 1 || cfg.Analysis.Regressions[0].Independent != "gov_prod" {
		t.Errorf("unexpected regressions %+v", cfg.Analysis.Regressions)
	}
	if cfg.Output.Precision != 4 {
		t.Errorf("expected precision 4, got %d", cfg.Output.Precision)
	}

	start, end, err := cfg.Analysis.Window()
	if err != nil {
		t.Fatalf("Window() error = %v", err)
	}
	if !start.Equal(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)) || !end.IsZero() {
		t.Errorf("unexpected window %v - %v", start, end)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTPPort != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.HTTPPort)
	}
	if len(cfg.Analysis.Regressions) != 1 {
		t.Errorf("expected default regression, got %+v", cfg.Analysis.Regressions)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.IsProduction() {
		t.Error("default config should be production mode")
	}

	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"

	if !cfg.IsDevelopment() {
		t.Error("config with debug/console should be development mode")
	}

	if got := cfg.GetOutputPath("table.csv"); got != "output/table.csv" {
		t.Errorf("expected 'output/table.csv', got %s", got)
	}

	if got := cfg.GetServerAddress(); got != "0.0.0.0:8080" {
		t.Errorf("expected '0.0.0.0:8080', got %s", got)
	}

	if cfg.Analysis.HasGovernmentSource() {
		t.Error("default config reads government spending from the GDP source")
	}
}
