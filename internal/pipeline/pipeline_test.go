package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/soltixdb/cyclix/internal/analytics"
	"github.com/soltixdb/cyclix/internal/config"
	"github.com/soltixdb/cyclix/internal/loader"
	"github.com/soltixdb/cyclix/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)

type stubLoader struct {
	tables map[string]*analytics.Table
	calls  []string
}

func (s *stubLoader) Load(_ context.Context, src loader.Source) (*analytics.Table, error) {
	s.calls = append(s.calls, src.Location)
	t, ok := s.tables[src.Location]
	if !ok {
		return nil, &loader.LoadError{Location: src.Location, Kind: loader.ErrUnreachable}
	}
	return t.Clone(), nil
}

// generateEconomy returns quarterly real GDP and government spending with
// exponential trends and out-of-phase cycles
func generateEconomy(t *testing.T, n int) *analytics.Table {
	t.Helper()
	gdp := make([]float64, n)
	gov := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		gdp[i] = 2000 * math.Exp(0.008*x) * (1 + 0.02*math.Sin(2*math.Pi*x/24))
		gov[i] = 300 * math.Exp(0.007*x) * (1 + 0.015*math.Cos(2*math.Pi*x/16))
	}
	table, err := analytics.NewTable(analytics.QuarterlyIndex(testStart, n))
	require.NoError(t, err)
	require.NoError(t, table.SetColumn("real_gdp", gdp))
	require.NoError(t, table.SetColumn("gov_prod", gov))
	return table
}

func testConfig() config.AnalysisConfig {
	cfg := config.DefaultConfig().Analysis
	cfg.GDP.Location = "gdp.csv"
	return cfg
}

func TestRun_FullWorkflow(t *testing.T) {
	stub := &stubLoader{tables: map[string]*analytics.Table{"gdp.csv": generateEconomy(t, 120)}}
	runner := NewRunner(testConfig(), stub, logging.NewNop())

	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageDone, res.Stage)
	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
	assert.False(t, res.FinishedAt.Before(res.StartedAt))
	assert.Equal(t, []string{"real_gdp", "real_gdpp"}, res.Series)

	for _, col := range []string{
		"real_gdpp",
		"real_gdp_log", "real_gdp_log_diff",
		"real_gdp_log_hp_trend", "real_gdp_log_hp_cycle",
		"real_gdp_log_bk_trend", "real_gdp_log_bk_cycle",
		"real_gdp_log_lin_trend", "real_gdp_log_lin_cycle",
		"real_gdpp_log_hp_cycle", "real_gdpp_log_bk_cycle", "real_gdpp_log_lin_cycle",
	} {
		assert.True(t, res.Table.Has(col), col)
	}

	gdp, _ := res.Table.Column("real_gdp")
	gov, _ := res.Table.Column("gov_prod")
	gdpp, _ := res.Table.Column("real_gdpp")
	for i := range gdp {
		assert.InDelta(t, gdp[i]-gov[i], gdpp[i], 1e-9)
	}

	// three methods plus growth for each series
	assert.Len(t, res.Volatility, 8)
	hp, ok := res.Summary("real_gdp", "hp")
	require.True(t, ok)
	assert.Greater(t, hp.StdDev, 0.0)
	assert.Equal(t, "real_gdp_log", hp.Reference)
	assert.InDelta(t, hp.StdDev/meanOf(t, res.Table, "real_gdp_log"), hp.CV, 1e-12)

	growth, ok := res.Summary("real_gdpp", GrowthMethod)
	require.True(t, ok)
	assert.Equal(t, "real_gdpp_log_diff", growth.Column)

	require.Len(t, res.Regressions, 3)
	for _, r := range res.Regressions {
		assert.Equal(t, "real_gdp_log_"+r.Method+"_cycle", r.Dependent)
		assert.Greater(t, r.Beta, 0.0)
		assert.Greater(t, r.N, 2)
	}
	assert.Equal(t, 120-24, res.Regressions[1].N)

	assert.NotEmpty(t, res.Crossovers)
}

func meanOf(t *testing.T, table *analytics.Table, col string) float64 {
	t.Helper()
	values, err := table.Valid(col)
	require.NoError(t, err)
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s / float64(len(values))
}

func TestRun_SeparateGovernmentSource(t *testing.T) {
	economy := generateEconomy(t, 80)
	gdpOnly := economy.Clone()
	gdpOnly.Drop("gov_prod")
	govOnly := economy.Clone()
	govOnly.Drop("real_gdp")

	stub := &stubLoader{tables: map[string]*analytics.Table{
		"gdp.csv": gdpOnly,
		"gov.csv": govOnly.Window(testStart.AddDate(1, 0, 0), time.Time{}),
	}}
	cfg := testConfig()
	cfg.Government.Location = "gov.csv"

	res, err := NewRunner(cfg, stub, logging.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gdp.csv", "gov.csv"}, stub.calls)
	assert.Equal(t, 76, res.Table.Len())
	assert.Equal(t, testStart.AddDate(1, 0, 0), res.Table.Period(0))
}

func TestRun_Window(t *testing.T) {
	stub := &stubLoader{tables: map[string]*analytics.Table{"gdp.csv": generateEconomy(t, 120)}}
	cfg := testConfig()
	cfg.Start = "1970-01-01"
	cfg.End = "1989-10-01"

	res, err := NewRunner(cfg, stub, logging.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80, res.Table.Len())
}

func TestRun_SelfReferenceCV(t *testing.T) {
	stub := &stubLoader{tables: map[string]*analytics.Table{"gdp.csv": generateEconomy(t, 100)}}
	cfg := testConfig()
	cfg.CVReference = "self"
	cfg.Crossovers = false

	res, err := NewRunner(cfg, stub, logging.NewNop()).Run(context.Background())
	if err != nil {
		// a cycle whose mean rounds to exactly zero has no CV against itself
		require.ErrorIs(t, err, analytics.ErrDivideByZero)
		return
	}
	for _, s := range res.Volatility {
		assert.Equal(t, s.Column, s.Reference)
	}
	assert.Nil(t, res.Crossovers)
}

func TestRun_Failures(t *testing.T) {
	t.Run("unreachable source", func(t *testing.T) {
		stub := &stubLoader{tables: map[string]*analytics.Table{}}
		res, err := NewRunner(testConfig(), stub, logging.NewNop()).Run(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, loader.ErrUnreachable))
		assert.Equal(t, StageLoad, res.Stage)
		assert.Nil(t, res.Table)
	})

	t.Run("not quarterly", func(t *testing.T) {
		monthly, err := analytics.NewTable([]time.Time{testStart, testStart.AddDate(0, 1, 0), testStart.AddDate(0, 2, 0)})
		require.NoError(t, err)
		require.NoError(t, monthly.SetColumn("real_gdp", []float64{1, 2, 3}))
		require.NoError(t, monthly.SetColumn("gov_prod", []float64{0.1, 0.2, 0.3}))

		stub := &stubLoader{tables: map[string]*analytics.Table{"gdp.csv": monthly}}
		_, err = NewRunner(testConfig(), stub, logging.NewNop()).Run(context.Background())
		assert.True(t, errors.Is(err, analytics.ErrInvalidIndex))
	})

	t.Run("missing government column", func(t *testing.T) {
		table := generateEconomy(t, 60)
		table.Drop("gov_prod")
		stub := &stubLoader{tables: map[string]*analytics.Table{"gdp.csv": table}}

		res, err := NewRunner(testConfig(), stub, logging.NewNop()).Run(context.Background())
		assert.True(t, errors.Is(err, analytics.ErrMissingColumn))
		assert.Equal(t, StageDerive, res.Stage)
	})

	t.Run("halts at first transform error", func(t *testing.T) {
		table := generateEconomy(t, 60)
		gov, _ := table.Column("gov_prod")
		gdp, _ := table.Column("real_gdp")
		gov[10] = gdp[10] + 1
		require.NoError(t, table.SetColumn("gov_prod", gov))
		stub := &stubLoader{tables: map[string]*analytics.Table{"gdp.csv": table}}

		res, err := NewRunner(testConfig(), stub, logging.NewNop()).Run(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, analytics.ErrDomain))
		assert.Contains(t, err.Error(), "series real_gdpp")
		assert.Equal(t, StageTransform, res.Stage)

		// the first series completed before the failure
		assert.True(t, res.Table.Has("real_gdp_log_lin_cycle"))
		assert.False(t, res.Table.Has("real_gdpp_log"))
		assert.Empty(t, res.Volatility)
	})
}

func TestAnalyze_DoesNotModifyInput(t *testing.T) {
	table := generateEconomy(t, 60)
	cfg := testConfig()

	res, err := NewRunner(cfg, nil, logging.NewNop()).Analyze(context.Background(), table)
	require.NoError(t, err)
	assert.True(t, res.Table.Has("real_gdpp"))
	assert.False(t, table.Has("real_gdpp"))
}

func TestRunner_SeriesIncludesRegressionSeries(t *testing.T) {
	cfg := testConfig()
	cfg.Series = []string{"real_gdp"}
	cfg.Regressions = []config.RegressionConfig{{Dependent: "real_gdp", Independent: "gov_prod"}}

	r := NewRunner(cfg, nil, logging.NewNop())
	assert.Equal(t, []string{"real_gdp", "gov_prod"}, r.series())
}

func TestRun_LogsCarryRequestAndRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, zerolog.InfoLevel)
	stub := &stubLoader{tables: map[string]*analytics.Table{"gdp.csv": generateEconomy(t, 120)}}

	ctx := logging.WithLogger(context.Background(), logger)
	ctx = logging.WithRequestID(ctx, "req-42")
	res, err := NewRunner(testConfig(), stub, nil).Run(ctx)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	for _, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &entry))
		assert.Equal(t, "req-42", entry["request_id"], entry["message"])
		assert.Equal(t, res.RunID, entry["run_id"], entry["message"])
	}
}
