package loader

import (
	"fmt"
	"unicode/utf8"

	"github.com/soltixdb/cyclix/internal/config"
)

// SourceFromConfig converts a configured source
func SourceFromConfig(cfg config.SourceConfig) (Source, error) {
	if cfg.Location == "" {
		return Source{}, fmt.Errorf("source location is required")
	}

	p := Params{
		DateColumn:  cfg.DateColumn,
		DateLayout:  cfg.DateLayout,
		RecordsKey:  cfg.RecordsKey,
		APIKey:      cfg.APIKey,
		APIKeyParam: cfg.APIKeyParam,
		Query:       cfg.Query,
		Headers:     cfg.Headers,
		Rename:      cfg.Rename,
		Timeout:     cfg.Timeout,
	}

	if cfg.Kind != "" {
		kind, err := ParseKind(cfg.Kind)
		if err != nil {
			return Source{}, err
		}
		p.Kind = kind
	}

	switch cfg.Delimiter {
	case "":
	case "tab", `\t`, "\t":
		p.Delimiter = '\t'
	default:
		r, size := utf8.DecodeRuneInString(cfg.Delimiter)
		if size != len(cfg.Delimiter) {
			return Source{}, fmt.Errorf("delimiter must be a single character, got %q", cfg.Delimiter)
		}
		p.Delimiter = r
	}

	if cfg.Thousands != "" {
		r, size := utf8.DecodeRuneInString(cfg.Thousands)
		if size != len(cfg.Thousands) {
			return Source{}, fmt.Errorf("thousands must be a single character, got %q", cfg.Thousands)
		}
		if r == p.Delimiter {
			return Source{}, fmt.Errorf("thousands separator %q equals the delimiter", cfg.Thousands)
		}
		p.Thousands = r
	}

	return Source{Location: cfg.Location, Params: p}, nil
}
