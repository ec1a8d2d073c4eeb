package models

import (
	"fmt"

	"github.com/soltixdb/cyclix/internal/analytics/transform"
)

// Request limits
const (
	MaxTransformSteps = 64
	MaxVARLags        = 16
	MaxForecastSteps  = 400
)

// SourceRequest describes a dataset the server loads on behalf of the caller
type SourceRequest struct {
	Location   string            `json:"location"`
	Kind       string            `json:"kind,omitempty"`
	Delimiter  string            `json:"delimiter,omitempty"`
	Thousands  string            `json:"thousands,omitempty"`
	DateColumn string            `json:"date_column,omitempty"`
	DateLayout string            `json:"date_layout,omitempty"`
	RecordsKey string            `json:"records_key,omitempty"`
	Query      map[string]string `json:"query,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Rename     map[string]string `json:"rename,omitempty"`
}

// RegressionPair names a dependent and an independent series
type RegressionPair struct {
	Dependent   string `json:"dependent"`
	Independent string `json:"independent"`
}

// AnalysisRequest runs the full workflow over an inline table or over
// sources. Unset fields keep the server configuration.
type AnalysisRequest struct {
	Table      *TableData     `json:"table,omitempty"`
	GDP        *SourceRequest `json:"gdp,omitempty"`
	Government *SourceRequest `json:"government,omitempty"`

	Series       []string         `json:"series,omitempty"`
	Frequency    string           `json:"frequency,omitempty"`
	Start        string           `json:"start,omitempty"`
	End          string           `json:"end,omitempty"`
	HPLambda     *float64         `json:"hp_lambda,omitempty"`
	BKLow        *int             `json:"bk_low,omitempty"`
	BKHigh       *int             `json:"bk_high,omitempty"`
	BKK          *int             `json:"bk_k,omitempty"`
	DetrendOrder *int             `json:"detrend_order,omitempty"`
	CVReference  string           `json:"cv_reference,omitempty"`
	DDOF         *int             `json:"ddof,omitempty"`
	Regressions  []RegressionPair `json:"regressions,omitempty"`
	IncludeTable bool             `json:"include_table,omitempty"`
}

// Validate checks that exactly one input is given
func (r *AnalysisRequest) Validate() error {
	switch {
	case r.Table != nil && r.GDP != nil:
		return fmt.Errorf("provide either table or gdp, not both")
	case r.Table == nil && r.GDP == nil:
		return fmt.Errorf("table or gdp is required")
	case r.Table == nil && r.Government != nil && r.Government.Location == "":
		return fmt.Errorf("government.location is required")
	case r.Table != nil && r.Government != nil:
		return fmt.Errorf("government needs gdp, not table")
	}
	if r.Table != nil {
		return r.Table.Validate()
	}
	if r.GDP.Location == "" {
		return fmt.Errorf("gdp.location is required")
	}
	return nil
}

// UsesSources reports whether the request asks the server to load data
func (r *AnalysisRequest) UsesSources() bool {
	return r.GDP != nil
}

// TransformRequest applies steps in order to an inline table
type TransformRequest struct {
	Table TableData        `json:"table"`
	Steps []transform.Step `json:"steps"`
}

// Validate checks the table and step list
func (r *TransformRequest) Validate() error {
	if err := r.Table.Validate(); err != nil {
		return err
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	if len(r.Steps) > MaxTransformSteps {
		return fmt.Errorf("at most %d steps are allowed", MaxTransformSteps)
	}
	for i, s := range r.Steps {
		if s.Source == "" {
			return fmt.Errorf("steps[%d].source is required", i)
		}
	}
	return nil
}

// VolatilityRequest measures one column. Window > 0 adds rolling metrics.
type VolatilityRequest struct {
	Table     TableData `json:"table"`
	Column    string    `json:"column"`
	Reference string    `json:"reference,omitempty"` // Column whose mean divides the CV; the column itself when empty
	Window    int       `json:"window,omitempty"`
	DDOF      int       `json:"ddof,omitempty"`
}

// Validate checks the request parameters
func (r *VolatilityRequest) Validate() error {
	if err := r.Table.Validate(); err != nil {
		return err
	}
	if r.Column == "" {
		return fmt.Errorf("column is required")
	}
	if r.Window < 0 {
		return fmt.Errorf("window must be non-negative")
	}
	if r.DDOF < 0 {
		return fmt.Errorf("ddof must be non-negative")
	}
	return nil
}

// RegressionRequest fits dependent on one or more regressors
type RegressionRequest struct {
	Table       TableData `json:"table"`
	Dependent   string    `json:"dependent"`
	Independent []string  `json:"independent"`
	Constant    *bool     `json:"constant,omitempty"`   // default: true
	Confidence  float64   `json:"confidence,omitempty"` // default: 0.95
}

// Validate checks the request parameters
func (r *RegressionRequest) Validate() error {
	if err := r.Table.Validate(); err != nil {
		return err
	}
	if r.Dependent == "" {
		return fmt.Errorf("dependent is required")
	}
	if len(r.Independent) == 0 {
		return fmt.Errorf("at least one independent column is required")
	}
	if r.Confidence != 0 && (r.Confidence <= 0 || r.Confidence >= 1) {
		return fmt.Errorf("confidence must be between 0 and 1")
	}
	return nil
}

// VARRequest fits a vector autoregression and optionally forecasts
type VARRequest struct {
	Table   TableData `json:"table"`
	Columns []string  `json:"columns"`
	Lags    int       `json:"lags"`
	Steps   int       `json:"steps,omitempty"` // Forecast and impulse response horizon
}

// Validate checks the request parameters
func (r *VARRequest) Validate() error {
	if err := r.Table.Validate(); err != nil {
		return err
	}
	if len(r.Columns) == 0 {
		return fmt.Errorf("at least one column is required")
	}
	if r.Lags < 1 || r.Lags > MaxVARLags {
		return fmt.Errorf("lags must be between 1 and %d", MaxVARLags)
	}
	if r.Steps < 0 || r.Steps > MaxForecastSteps {
		return fmt.Errorf("steps must be between 0 and %d", MaxForecastSteps)
	}
	return nil
}
