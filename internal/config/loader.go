package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")           // Current directory
		v.AddConfigPath("./configs")   // Project configs directory
		v.AddConfigPath("./config")    // Alternative config directory
		v.AddConfigPath("/etc/cyclix") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides, e.g. CYCLIX_ANALYSIS_HP_LAMBDA
	v.SetEnvPrefix("CYCLIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Analysis defaults
	v.SetDefault("analysis.gdp.location", d.Analysis.GDP.Location)
	v.SetDefault("analysis.gdp.date_column", d.Analysis.GDP.DateColumn)
	v.SetDefault("analysis.gdp.timeout", d.Analysis.GDP.Timeout)
	v.SetDefault("analysis.government.location", "")
	v.SetDefault("analysis.government.date_column", d.Analysis.Government.DateColumn)
	v.SetDefault("analysis.government.timeout", d.Analysis.Government.Timeout)
	v.SetDefault("analysis.columns.real_gdp", d.Analysis.Columns.RealGDP)
	v.SetDefault("analysis.columns.gov_prod", d.Analysis.Columns.GovProd)
	v.SetDefault("analysis.columns.private_gdp", d.Analysis.Columns.PrivateGDP)
	v.SetDefault("analysis.series", d.Analysis.Series)
	v.SetDefault("analysis.frequency", d.Analysis.Frequency)
	v.SetDefault("analysis.start", "")
	v.SetDefault("analysis.end", "")
	v.SetDefault("analysis.hp.lambda", d.Analysis.HP.Lambda)
	v.SetDefault("analysis.bk.low", d.Analysis.BK.Low)
	v.SetDefault("analysis.bk.high", d.Analysis.BK.High)
	v.SetDefault("analysis.bk.k", d.Analysis.BK.K)
	v.SetDefault("analysis.detrend.order", d.Analysis.Detrend.Order)
	v.SetDefault("analysis.cv_reference", d.Analysis.CVReference)
	v.SetDefault("analysis.ddof", d.Analysis.DDOF)
	v.SetDefault("analysis.crossovers", d.Analysis.Crossovers)
	v.SetDefault("analysis.regressions", []map[string]string{
		{"dependent": "real_gdp", "independent": "real_gdpp"},
	})

	// Output defaults
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.precision", d.Output.Precision)
	v.SetDefault("output.save", d.Output.Save)

	// Cache defaults
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.url", d.Cache.URL)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.key_prefix", d.Cache.KeyPrefix)

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.allow_sources", d.Server.AllowSources)

	// Auth defaults
	v.SetDefault("auth.enabled", d.Auth.Enabled)
	v.SetDefault("auth.api_keys", d.Auth.APIKeys)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.time_format", d.Logging.TimeFormat)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			GDP: SourceConfig{
				Location:   "data/gdp.csv",
				DateColumn: "date",
				Timeout:    30 * time.Second,
			},
			Government: SourceConfig{
				DateColumn: "date",
				Timeout:    30 * time.Second,
			},
			Columns: ColumnsConfig{
				RealGDP:    "real_gdp",
				GovProd:    "gov_prod",
				PrivateGDP: "real_gdpp",
			},
			Series:    []string{"real_gdp", "real_gdpp"},
			Frequency: "quarterly",
			HP:        HPConfig{Lambda: 1600},
			BK:        BKConfig{Low: 6, High: 32, K: 12},
			Detrend:   DetrendConfig{Order: 1},

			CVReference: "log",
			Regressions: []RegressionConfig{
				{Dependent: "real_gdp", Independent: "real_gdpp"},
			},
			Crossovers: true,
		},
		Output: OutputConfig{
			Dir:       "./output",
			Precision: 6,
		},
		Cache: CacheConfig{
			Type:      "memory",
			TTL:       24 * time.Hour,
			KeyPrefix: "cyclix",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     8080,
			BodyLimit:    8 * 1024 * 1024,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Auth: AuthConfig{
			APIKeys: []string{},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
