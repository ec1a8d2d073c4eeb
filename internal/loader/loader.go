// Package loader reads tabular time series from local files and remote
// endpoints into analytics tables.
package loader

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/soltixdb/cyclix/internal/analytics"
	"github.com/soltixdb/cyclix/internal/logging"
)

// Kind selects how a source is read
type Kind string

const (
	KindCSV   Kind = "csv"
	KindJSON  Kind = "json"
	KindYAML  Kind = "yaml"
	KindAPI   Kind = "api"
	KindExcel Kind = "excel"
)

var extensionKinds = map[string]Kind{
	".csv":  KindCSV,
	".txt":  KindCSV,
	".tsv":  KindCSV,
	".json": KindJSON,
	".yaml": KindYAML,
	".yml":  KindYAML,
	".xlsx": KindExcel,
	".xls":  KindExcel,
}

// ParseKind converts a configured kind name
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindCSV, KindJSON, KindYAML, KindAPI, KindExcel:
		return k, nil
	case "yml":
		return KindYAML, nil
	case "xlsx", "xls":
		return KindExcel, nil
	}
	return "", newLoadError(s, ErrUnsupportedFormat, "unknown source kind %q", s)
}

// DetectKind infers the kind from a location. http(s) URLs whose path ends in
// a known file extension are read as that file type; any other URL is an API
// endpoint. Local paths must carry a known extension.
func DetectKind(location string) (Kind, error) {
	if isRemote(location) {
		u, err := url.Parse(location)
		if err != nil {
			return "", newLoadError(location, ErrUnsupportedFormat, "invalid url: %v", err)
		}
		if k, ok := extensionKinds[strings.ToLower(path.Ext(u.Path))]; ok {
			return k, nil
		}
		return KindAPI, nil
	}

	if k, ok := extensionKinds[strings.ToLower(filepath.Ext(location))]; ok {
		return k, nil
	}
	return "", newLoadError(location, ErrUnsupportedFormat, "cannot infer format from %q", filepath.Ext(location))
}

func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Params controls parsing and remote requests. The zero value reads a comma
// separated file with a "date" column.
type Params struct {
	Kind        Kind              // Detected from the location when empty
	Delimiter   rune              // CSV delimiter; ',' or '\t' for .tsv when zero
	Thousands   rune              // Thousands separator stripped from numbers; none when zero
	DateColumn  string            // default: date
	DateLayout  string            // Go time layout; common layouts are tried when empty
	RecordsKey  string            // default: data, observations is also recognised
	APIKey      string            // Sent as query parameter APIKeyParam
	APIKeyParam string            // default: api_key
	Query       map[string]string // Extra query parameters for remote sources
	Headers     map[string]string // Extra request headers for remote sources
	Rename      map[string]string // Source column -> table column, matched case-insensitively
	Timeout     time.Duration     // Remote request timeout; the client's timeout when zero
}

// Source is a location plus how to read it
type Source struct {
	Location string
	Params   Params
}

// Loader reads sources into tables. A Loader is safe for concurrent use when
// its cache is.
type Loader struct {
	client   *http.Client
	cache    Cache
	cacheTTL time.Duration
	logger   *logging.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithHTTPClient sets the client used for remote sources
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		l.client = client
	}
}

// WithCache stores remote payloads in cache for ttl
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(l *Loader) {
		l.cache = cache
		l.cacheTTL = ttl
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader
func New(opts ...Option) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logging.Global(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads src into a table sorted by period
func (l *Loader) Load(ctx context.Context, src Source) (*analytics.Table, error) {
	p := src.Params
	kind := p.Kind
	if kind == "" {
		var err error
		if kind, err = DetectKind(src.Location); err != nil {
			return nil, err
		}
	}
	if p.Delimiter == 0 {
		p.Delimiter = ','
		if strings.EqualFold(path.Ext(src.Location), ".tsv") {
			p.Delimiter = '\t'
		}
	}

	if kind == KindExcel {
		return nil, newLoadError(src.Location, ErrUnsupportedFormat, "spreadsheet sources are not supported, export to csv")
	}

	var body []byte
	var err error
	switch {
	case kind == KindAPI || isRemote(src.Location):
		body, err = l.fetch(ctx, src.Location, p)
	default:
		body, err = readFile(src.Location)
	}
	if err != nil {
		return nil, err
	}

	var f *frame
	switch kind {
	case KindCSV:
		f, err = parseCSV(body, p.Delimiter)
	case KindJSON, KindAPI:
		f, err = parseJSON(body, p.RecordsKey)
	case KindYAML:
		f, err = parseYAML(body, p.RecordsKey)
	default:
		return nil, newLoadError(src.Location, ErrUnsupportedFormat, "unknown source kind %q", kind)
	}
	if err != nil {
		return nil, newLoadError(src.Location, ErrMalformedSource, "%v", err)
	}

	table, err := f.table(p)
	if err != nil {
		return nil, newLoadError(src.Location, ErrMalformedSource, "%v", err)
	}

	l.logger.WithContext(ctx).Debug("Source loaded",
		"location", redact(src.Location, p),
		"kind", string(kind),
		"rows", table.Len(),
		"columns", len(table.Columns()))
	return table, nil
}

// redact hides the API key if it was embedded in the location
func redact(location string, p Params) string {
	if p.APIKey == "" {
		return location
	}
	return strings.ReplaceAll(location, p.APIKey, "***")
}
