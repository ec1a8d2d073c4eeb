package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// VolatilityRow is the volatility of one series under one method
type VolatilityRow struct {
	Series    string `json:"series"`
	Method    string `json:"method"`
	Column    string `json:"column"`
	Reference string `json:"reference,omitempty"`
	StdDev    Float  `json:"std_dev"`
	CV        Float  `json:"cv"`
}

// RegressionRow is one bivariate cycle regression
type RegressionRow struct {
	Method      string `json:"method,omitempty"`
	Dependent   string `json:"dependent"`
	Independent string `json:"independent"`
	Alpha       Float  `json:"alpha"`
	AlphaStdErr Float  `json:"alpha_std_err"`
	Beta        Float  `json:"beta"`
	StdErr      Float  `json:"std_err"`
	TStat       Float  `json:"t_stat"`
	PValue      Float  `json:"p_value"`
	CILower     Float  `json:"ci_lower"`
	CIUpper     Float  `json:"ci_upper"`
	RSquared    Float  `json:"r_squared"`
	N           int    `json:"n"`
}

// AnalysisResponse is the result document of a full workflow run. It is
// also written as result.json.
type AnalysisResponse struct {
	RunID       string          `json:"run_id"`
	StartedAt   string          `json:"started_at"`
	FinishedAt  string          `json:"finished_at"`
	Stage       string          `json:"stage"`
	Series      []string        `json:"series"`
	Volatility  []VolatilityRow `json:"volatility"`
	Regressions []RegressionRow `json:"regressions"`
	Crossovers  []string        `json:"crossovers"`
	Table       *TableData      `json:"table,omitempty"`
}

// TransformResponse returns the table after the applied steps
type TransformResponse struct {
	Applied int       `json:"applied"`
	Table   TableData `json:"table"`
}

// VolatilityResponse reports full-sample and optional rolling metrics
type VolatilityResponse struct {
	Column        string   `json:"column"`
	Reference     string   `json:"reference"`
	DDOF          int      `json:"ddof"`
	StdDev        Float    `json:"std_dev"`
	CV            Float    `json:"cv"`
	Window        int      `json:"window,omitempty"`
	Index         []string `json:"index,omitempty"`
	RollingStdDev []Float  `json:"rolling_std_dev,omitempty"`
	RollingCV     []Float  `json:"rolling_cv,omitempty"`
}

// CoefficientRow is one estimated regression coefficient
type CoefficientRow struct {
	Name     string `json:"name"`
	Estimate Float  `json:"estimate"`
	StdErr   Float  `json:"std_err"`
	TStat    Float  `json:"t_stat"`
	PValue   Float  `json:"p_value"`
	Lower    Float  `json:"lower"`
	Upper    Float  `json:"upper"`
}

// RegressionResponse is a fitted least-squares model
type RegressionResponse struct {
	Dependent    string           `json:"dependent"`
	Regressors   []string         `json:"regressors"`
	Constant     bool             `json:"constant"`
	Confidence   float64          `json:"confidence"`
	N            int              `json:"n"`
	DF           int              `json:"df"`
	RSquared     Float            `json:"r_squared"`
	AdjRSquared  Float            `json:"adj_r_squared"`
	SigmaSq      Float            `json:"sigma_sq"`
	Coefficients []CoefficientRow `json:"coefficients"`
}

// VARResponse is a fitted vector autoregression with its forecast and
// impulse responses. IRF[h][i][j] is the response of Columns[i] at horizon h
// to a unit shock in Columns[j].
type VARResponse struct {
	Columns   []string    `json:"columns"`
	Lags      int         `json:"lags"`
	N         int         `json:"n"`
	Intercept []Float     `json:"intercept"`
	Forecast  [][]Float   `json:"forecast,omitempty"`
	IRF       [][][]Float `json:"irf,omitempty"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
