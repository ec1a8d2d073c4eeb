// Package pipeline runs the business-cycle workflow: load GDP and government
// spending, derive private GDP, decompose every series with the HP, BK and
// linear filters, then measure volatility and regress the cycles.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soltixdb/cyclix/internal/analytics"
	"github.com/soltixdb/cyclix/internal/analytics/regression"
	"github.com/soltixdb/cyclix/internal/analytics/transform"
	"github.com/soltixdb/cyclix/internal/analytics/volatility"
	"github.com/soltixdb/cyclix/internal/config"
	"github.com/soltixdb/cyclix/internal/loader"
	"github.com/soltixdb/cyclix/internal/logging"
)

// GrowthMethod labels volatility of the log-difference growth rate
const GrowthMethod = "growth"

// TableLoader reads a source into a table
type TableLoader interface {
	Load(ctx context.Context, src loader.Source) (*analytics.Table, error)
}

// Stage names a workflow step; a failed run reports the stage it stopped in
type Stage string

const (
	StageLoad       Stage = "load"
	StageDerive     Stage = "derive"
	StageTransform  Stage = "transform"
	StageVolatility Stage = "volatility"
	StageRegression Stage = "regression"
	StageCrossover  Stage = "crossover"
	StageDone       Stage = "done"
)

// RegressionResult is one cycle-on-cycle regression for a decomposition method
type RegressionResult struct {
	Method string `json:"method"`
	regression.Result
}

// Result collects everything a run produced. After a failure it holds the
// output of the stages that completed.
type Result struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Stage       Stage
	Series      []string
	Table       *analytics.Table
	Volatility  []volatility.Summary
	Regressions []RegressionResult
	Crossovers  []time.Time
}

// Runner executes the workflow for one analysis configuration
type Runner struct {
	cfg    config.AnalysisConfig
	loader TableLoader
	logger *logging.Logger
	now    func() time.Time
}

// NewRunner creates a Runner. cfg is expected to have passed Validate. A nil
// logger means the logger carried by each run's context.
func NewRunner(cfg config.AnalysisConfig, l TableLoader, logger *logging.Logger) *Runner {
	return &Runner{cfg: cfg, loader: l, logger: logger, now: time.Now}
}

// runContext tags ctx with the run id and returns the run's logger, which
// carries the run id and any request id already in ctx
func (r *Runner) runContext(ctx context.Context, runID string) (context.Context, *logging.Logger) {
	ctx = logging.WithRunID(ctx, runID)
	logger := r.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	return ctx, logger.WithContext(ctx)
}

// Run loads the configured sources and analyses them
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := r.newResult()
	ctx, log := r.runContext(ctx, res.RunID)

	table, err := r.load(ctx)
	if err != nil {
		return r.fail(res, log, err)
	}
	res.Table = table
	log.Info("Sources loaded", "rows", table.Len(), "columns", len(table.Columns()))

	return r.analyze(res, log)
}

// Analyze runs the workflow on an already loaded table. The table is not
// modified; the result carries a copy with the derived columns.
func (r *Runner) Analyze(ctx context.Context, table *analytics.Table) (*Result, error) {
	res := r.newResult()
	_, log := r.runContext(ctx, res.RunID)

	prepared, err := r.prepare(table.Clone())
	if err != nil {
		return r.fail(res, log, err)
	}
	res.Table = prepared
	return r.analyze(res, log)
}

func (r *Runner) newResult() *Result {
	return &Result{
		RunID:     uuid.New().String(),
		StartedAt: r.now(),
		Stage:     StageLoad,
		Series:    r.series(),
	}
}

func (r *Runner) fail(res *Result, log *logging.Logger, err error) (*Result, error) {
	res.FinishedAt = r.now()
	log.Error("Analysis failed", "stage", string(res.Stage), "error", err)
	return res, fmt.Errorf("%s: %w", res.Stage, err)
}

// series lists the configured series followed by any regression series not
// already named
func (r *Runner) series() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range r.cfg.Series {
		add(s)
	}
	for _, reg := range r.cfg.Regressions {
		add(reg.Dependent)
		add(reg.Independent)
	}
	return out
}

func (r *Runner) load(ctx context.Context) (*analytics.Table, error) {
	src, err := loader.SourceFromConfig(r.cfg.GDP)
	if err != nil {
		return nil, fmt.Errorf("gdp source: %w", err)
	}
	table, err := r.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}

	if r.cfg.HasGovernmentSource() {
		gsrc, err := loader.SourceFromConfig(r.cfg.Government)
		if err != nil {
			return nil, fmt.Errorf("government source: %w", err)
		}
		gov, err := r.loader.Load(ctx, gsrc)
		if err != nil {
			return nil, err
		}
		table = table.Join(gov)
	}
	return r.prepare(table)
}

// prepare applies the window and frequency checks
func (r *Runner) prepare(table *analytics.Table) (*analytics.Table, error) {
	start, end, err := r.cfg.Window()
	if err != nil {
		return nil, analytics.NewOpError("window", "", analytics.ErrInvalidParameter, "%v", err)
	}
	if !start.IsZero() || !end.IsZero() {
		table = table.Window(start, end)
	}
	if table.Len() == 0 {
		return nil, analytics.NewOpError("window", "", analytics.ErrInsufficientData, "no periods left")
	}
	if r.cfg.Frequency == "quarterly" && !table.IsQuarterly() {
		return nil, analytics.NewOpError("frequency", "", analytics.ErrInvalidIndex, "periods are not consecutive quarters")
	}
	return table, nil
}

func (r *Runner) analyze(res *Result, log *logging.Logger) (*Result, error) {
	t := res.Table
	cols := r.cfg.Columns

	res.Stage = StageDerive
	if err := t.Subtract(cols.PrivateGDP, cols.RealGDP, cols.GovProd); err != nil {
		return r.fail(res, log, err)
	}

	res.Stage = StageTransform
	for _, s := range res.Series {
		if err := r.decompose(t, s); err != nil {
			return r.fail(res, log, fmt.Errorf("series %s: %w", s, err))
		}
	}
	log.Debug("Series decomposed", "series", res.Series)

	res.Stage = StageVolatility
	opts := []volatility.Option{volatility.WithDDOF(r.cfg.DDOF)}
	for _, s := range res.Series {
		logCol := transform.LogColumn(s)
		ref := logCol
		if r.cfg.CVReference == "self" {
			ref = ""
		}
		for _, m := range transform.Methods() {
			sum, err := volatility.Summarize(t, s, string(m), transform.CycleColumn(logCol, m), ref, opts...)
			if err != nil {
				return r.fail(res, log, fmt.Errorf("series %s: %w", s, err))
			}
			res.Volatility = append(res.Volatility, sum)
		}
		sum, err := volatility.Summarize(t, s, GrowthMethod, transform.DiffColumn(logCol), "", opts...)
		if err != nil {
			return r.fail(res, log, fmt.Errorf("series %s: %w", s, err))
		}
		res.Volatility = append(res.Volatility, sum)
	}

	res.Stage = StageRegression
	for _, reg := range r.cfg.Regressions {
		depLog, indepLog := transform.LogColumn(reg.Dependent), transform.LogColumn(reg.Independent)
		for _, m := range transform.Methods() {
			out, err := regression.Run(t, transform.CycleColumn(depLog, m), transform.CycleColumn(indepLog, m))
			if err != nil {
				return r.fail(res, log, err)
			}
			res.Regressions = append(res.Regressions, RegressionResult{Method: string(m), Result: out})
		}
	}

	res.Stage = StageCrossover
	if r.cfg.Crossovers && len(r.cfg.Regressions) > 0 {
		first := r.cfg.Regressions[0]
		cross, err := analytics.FindCrossovers(t,
			transform.CycleColumn(transform.LogColumn(first.Dependent), transform.MethodHP),
			transform.CycleColumn(transform.LogColumn(first.Independent), transform.MethodHP))
		if err != nil {
			return r.fail(res, log, err)
		}
		res.Crossovers = cross
	}

	res.Stage = StageDone
	res.FinishedAt = r.now()
	log.Info("Analysis completed",
		"series", len(res.Series),
		"volatility", len(res.Volatility),
		"regressions", len(res.Regressions),
		"duration", res.FinishedAt.Sub(res.StartedAt))
	return res, nil
}

// decompose adds log, growth and the three trend/cycle decompositions of s
func (r *Runner) decompose(t *analytics.Table, s string) error {
	logCol := transform.LogColumn(s)
	return transform.New(t).
		Log(s, logCol).
		Difference(logCol, transform.DiffColumn(logCol), 1).
		HP(logCol, transform.HPConfig{Lambda: r.cfg.HP.Lambda}).
		BK(logCol, transform.BKConfig{Low: r.cfg.BK.Low, High: r.cfg.BK.High, K: r.cfg.BK.K}).
		LinearDetrend(logCol, transform.DetrendConfig{Order: r.cfg.Detrend.Order}).
		Err()
}

// Summary returns the volatility summary for a series and method
func (res *Result) Summary(series, method string) (volatility.Summary, bool) {
	for _, s := range res.Volatility {
		if s.Series == series && s.Method == method {
			return s, true
		}
	}
	return volatility.Summary{}, false
}
