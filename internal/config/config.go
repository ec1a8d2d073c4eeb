package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Output   OutputConfig   `mapstructure:"output"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AnalysisConfig describes the cycle and volatility workflow
type AnalysisConfig struct {
	GDP        SourceConfig  `mapstructure:"gdp"`        // Source holding real GDP (and government spending when Government is unset)
	Government SourceConfig  `mapstructure:"government"` // Optional separate government spending source
	Columns    ColumnsConfig `mapstructure:"columns"`
	Series     []string      `mapstructure:"series"`    // Series to decompose (default: real_gdp, real_gdpp)
	Frequency  string        `mapstructure:"frequency"` // quarterly (default) or any
	Start      string        `mapstructure:"start"`     // Optional window start, YYYY-MM-DD
	End        string        `mapstructure:"end"`       // Optional window end, YYYY-MM-DD

	HP      HPConfig      `mapstructure:"hp"`
	BK      BKConfig      `mapstructure:"bk"`
	Detrend DetrendConfig `mapstructure:"detrend"`

	CVReference string             `mapstructure:"cv_reference"` // log (default): CV against the log level; self: against the cycle itself
	DDOF        int                `mapstructure:"ddof"`         // Variance divisor n-ddof (default: 0, population)
	Regressions []RegressionConfig `mapstructure:"regressions"`  // Series pairs regressed cycle on cycle for every method
	Crossovers  bool               `mapstructure:"crossovers"`   // Report sign changes between the HP cycles of the first pair
}

// SourceConfig locates and parses one input dataset
type SourceConfig struct {
	Location    string            `mapstructure:"location"`      // File path or URL
	Kind        string            `mapstructure:"kind"`          // csv, json, yaml, api; detected from Location when empty
	Delimiter   string            `mapstructure:"delimiter"`     // CSV field delimiter (default: ",", tab for .tsv)
	Thousands   string            `mapstructure:"thousands"`     // Thousands separator in numbers (default: none)
	DateColumn  string            `mapstructure:"date_column"`   // Period column (default: date)
	DateLayout  string            `mapstructure:"date_layout"`   // Go time layout; common layouts are tried when empty
	RecordsKey  string            `mapstructure:"records_key"`   // JSON/YAML key holding the records (default: data)
	APIKey      string            `mapstructure:"api_key"`       // Optional API key sent as a query parameter
	APIKeyParam string            `mapstructure:"api_key_param"` // Query parameter name for APIKey (default: api_key)
	Query       map[string]string `mapstructure:"query"`         // Extra query parameters
	Headers     map[string]string `mapstructure:"headers"`       // Extra request headers
	Rename      map[string]string `mapstructure:"rename"`        // Source column -> table column
	Timeout     time.Duration     `mapstructure:"timeout"`       // Remote request timeout (default: 30s)
}

// ColumnsConfig names the columns the workflow derives from
type ColumnsConfig struct {
	RealGDP    string `mapstructure:"real_gdp"`    // default: real_gdp
	GovProd    string `mapstructure:"gov_prod"`    // default: gov_prod
	PrivateGDP string `mapstructure:"private_gdp"` // derived real_gdp - gov_prod (default: real_gdpp)
}

// HPConfig represents Hodrick-Prescott filter settings
type HPConfig struct {
	Lambda float64 `mapstructure:"lambda"` // default: 1600
}

// BKConfig represents Baxter-King filter settings
type BKConfig struct {
	Low  int `mapstructure:"low"`  // default: 6
	High int `mapstructure:"high"` // default: 32
	K    int `mapstructure:"k"`    // default: 12
}

// DetrendConfig represents polynomial detrending settings
type DetrendConfig struct {
	Order int `mapstructure:"order"` // default: 1
}

// RegressionConfig names a dependent and an independent series
type RegressionConfig struct {
	Dependent   string `mapstructure:"dependent"`
	Independent string `mapstructure:"independent"`
}

// OutputConfig represents artifact output settings
type OutputConfig struct {
	Dir       string `mapstructure:"dir"`       // Artifact directory (default: ./output)
	Precision int    `mapstructure:"precision"` // Float digits in CSV export (default: 6)
	Save      bool   `mapstructure:"save"`      // Write artifacts after each run
}

// CacheConfig represents remote payload cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Type      string        `mapstructure:"type"`       // memory (default), redis
	URL       string        `mapstructure:"url"`        // Redis URL (e.g., redis://localhost:6379)
	Password  string        `mapstructure:"password"`   // Optional password
	DB        int           `mapstructure:"db"`         // Redis database number
	TTL       time.Duration `mapstructure:"ttl"`        // Entry lifetime (default: 24h)
	KeyPrefix string        `mapstructure:"key_prefix"` // Redis key prefix (default: cyclix)
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`          // Bind address for server (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"`     // HTTP server port
	BodyLimit    int           `mapstructure:"body_limit"`    // Max request body in bytes
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // default: 60s
	AllowSources bool          `mapstructure:"allow_sources"` // Let API requests name sources for the server to load
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis config: %w", err)
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates analysis configuration
func (c *AnalysisConfig) Validate() error {
	if c.Columns.RealGDP == "" || c.Columns.GovProd == "" || c.Columns.PrivateGDP == "" {
		return fmt.Errorf("columns.real_gdp, columns.gov_prod and columns.private_gdp are required")
	}

	if len(c.Series) == 0 {
		return fmt.Errorf("at least one series is required")
	}

	if c.Frequency != "quarterly" && c.Frequency != "any" {
		return fmt.Errorf("frequency must be 'quarterly' or 'any'")
	}

	if c.HP.Lambda < 0 {
		return fmt.Errorf("hp.lambda must be non-negative")
	}

	if c.BK.Low < 2 || c.BK.High <= c.BK.Low {
		return fmt.Errorf("bk.low must be at least 2 and below bk.high")
	}

	if c.BK.K < 1 {
		return fmt.Errorf("bk.k must be at least 1")
	}

	if c.Detrend.Order < 0 {
		return fmt.Errorf("detrend.order must be non-negative")
	}

	if c.CVReference != "log" && c.CVReference != "self" {
		return fmt.Errorf("cv_reference must be 'log' or 'self'")
	}

	if c.DDOF < 0 {
		return fmt.Errorf("ddof must be non-negative")
	}

	for i, r := range c.Regressions {
		if r.Dependent == "" || r.Independent == "" {
			return fmt.Errorf("regressions[%d] needs dependent and independent", i)
		}
	}

	if _, _, err := c.Window(); err != nil {
		return err
	}

	return nil
}

// Validate validates output configuration
func (c *OutputConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}

	if c.Precision < 0 || c.Precision > 17 {
		return fmt.Errorf("precision must be between 0 and 17")
	}

	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch c.Type {
	case "memory":
	case "redis":
		if c.URL == "" {
			return fmt.Errorf("url is required for redis cache")
		}
	default:
		return fmt.Errorf("type must be 'memory' or 'redis'")
	}

	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.BodyLimit < 0 {
		return fmt.Errorf("body_limit must be non-negative")
	}

	return nil
}

// Validate validates authentication configuration
func (c *AuthConfig) Validate() error {
	if c.Enabled && len(c.APIKeys) == 0 {
		return fmt.Errorf("api_keys are required when auth is enabled")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
