// Package report renders analysis results: plain-text volatility and
// regression tables, CSV export of the analysed table, and the JSON result
// document served by the API and written next to the other artifacts.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/soltixdb/cyclix/internal/analytics/regression"
	"github.com/soltixdb/cyclix/internal/analytics/volatility"
	"github.com/soltixdb/cyclix/internal/models"
	"github.com/soltixdb/cyclix/internal/pipeline"
)

// NewDocument converts a pipeline result. The table is included only when
// withTable is set.
func NewDocument(res *pipeline.Result, withTable bool) models.AnalysisResponse {
	doc := models.AnalysisResponse{
		RunID:       res.RunID,
		StartedAt:   formatTime(res.StartedAt),
		FinishedAt:  formatTime(res.FinishedAt),
		Stage:       string(res.Stage),
		Series:      res.Series,
		Volatility:  make([]models.VolatilityRow, 0, len(res.Volatility)),
		Regressions: make([]models.RegressionRow, 0, len(res.Regressions)),
		Crossovers:  make([]string, 0, len(res.Crossovers)),
	}
	for _, s := range res.Volatility {
		doc.Volatility = append(doc.Volatility, VolatilityRow(s))
	}
	for _, r := range res.Regressions {
		doc.Regressions = append(doc.Regressions, RegressionRow(r.Method, r.Result))
	}
	for _, p := range res.Crossovers {
		doc.Crossovers = append(doc.Crossovers, p.Format(models.PeriodLayout))
	}
	if withTable && res.Table != nil {
		d := NewTableData(res.Table)
		doc.Table = &d
	}
	return doc
}

// VolatilityRow converts a volatility summary
func VolatilityRow(s volatility.Summary) models.VolatilityRow {
	return models.VolatilityRow{
		Series:    s.Series,
		Method:    s.Method,
		Column:    s.Column,
		Reference: s.Reference,
		StdDev:    models.Float(s.StdDev),
		CV:        models.Float(s.CV),
	}
}

// RegressionRow converts a bivariate regression result
func RegressionRow(method string, r regression.Result) models.RegressionRow {
	return models.RegressionRow{
		Method:      method,
		Dependent:   r.Dependent,
		Independent: r.Independent,
		Alpha:       models.Float(r.Alpha),
		AlphaStdErr: models.Float(r.AlphaStdErr),
		Beta:        models.Float(r.Beta),
		StdErr:      models.Float(r.StdErr),
		TStat:       models.Float(r.TStat),
		PValue:      models.Float(r.PValue),
		CILower:     models.Float(r.CILower),
		CIUpper:     models.Float(r.CIUpper),
		RSquared:    models.Float(r.RSquared),
		N:           r.N,
	}
}

// ModelResponse converts a fitted multivariate model
func ModelResponse(m *regression.Model) models.RegressionResponse {
	out := models.RegressionResponse{
		Dependent:    m.Dependent,
		Regressors:   m.Regressors,
		Constant:     m.Constant,
		Confidence:   m.Confidence,
		N:            m.N,
		DF:           m.DF,
		RSquared:     models.Float(m.RSquared),
		AdjRSquared:  models.Float(m.AdjRSquared),
		SigmaSq:      models.Float(m.SigmaSq),
		Coefficients: make([]models.CoefficientRow, 0, len(m.Coefficients)),
	}
	for _, c := range m.Coefficients {
		out.Coefficients = append(out.Coefficients, models.CoefficientRow{
			Name:     c.Name,
			Estimate: models.Float(c.Estimate),
			StdErr:   models.Float(c.StdErr),
			TStat:    models.Float(c.TStat),
			PValue:   models.Float(c.PValue),
			Lower:    models.Float(c.Lower),
			Upper:    models.Float(c.Upper),
		})
	}
	return out
}

// VARResponse converts a fitted VAR with an optional horizon of steps
func VARResponse(v *regression.VAR, steps int) models.VARResponse {
	out := models.VARResponse{
		Columns:   v.Columns,
		Lags:      v.Lags,
		N:         v.N,
		Intercept: models.Floats(v.Intercept),
	}
	if steps <= 0 {
		return out
	}
	for _, row := range v.Forecast(steps) {
		out.Forecast = append(out.Forecast, models.Floats(row))
	}
	for _, phi := range v.IRF(steps) {
		r, c := phi.Dims()
		m := make([][]models.Float, r)
		for i := 0; i < r; i++ {
			m[i] = make([]models.Float, c)
			for j := 0; j < c; j++ {
				m[i][j] = models.Float(phi.At(i, j))
			}
		}
		out.IRF = append(out.IRF, m)
	}
	return out
}

// WriteJSON writes the result document as indented JSON
func WriteJSON(w io.Writer, doc models.AnalysisResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
