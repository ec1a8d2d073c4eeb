package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// EnsureDirectories ensures all required directories exist
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Output.Dir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// GetOutputPath returns the full path for an artifact file
func (c *Config) GetOutputPath(filename string) string {
	return filepath.Join(c.Output.Dir, filename)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Logging.Level == "info" && c.Logging.Format == "json"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.HTTPPort)
}

// windowLayouts are the accepted formats for analysis.start and analysis.end
var windowLayouts = []string{"2006-01-02", "2006-01", "2006"}

// Window parses the optional analysis window. A zero time means the window
// is open on that side.
func (c *AnalysisConfig) Window() (start, end time.Time, err error) {
	if start, err = parseWindowDate(c.Start); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
	}
	if end, err = parseWindowDate(c.End); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s", c.End, c.Start)
	}
	return start, end, nil
}

func parseWindowDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range windowLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// HasGovernmentSource reports whether government spending comes from its own source
func (c *AnalysisConfig) HasGovernmentSource() bool {
	return c.Government.Location != ""
}
