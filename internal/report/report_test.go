package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soltixdb/cyclix/internal/analytics"
	"github.com/soltixdb/cyclix/internal/analytics/regression"
	"github.com/soltixdb/cyclix/internal/analytics/volatility"
	"github.com/soltixdb/cyclix/internal/config"
	"github.com/soltixdb/cyclix/internal/logging"
	"github.com/soltixdb/cyclix/internal/models"
	"github.com/soltixdb/cyclix/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func smallTable(t *testing.T) *analytics.Table {
	t.Helper()
	table, err := analytics.NewTable(analytics.QuarterlyIndex(testStart, 3))
	require.NoError(t, err)
	require.NoError(t, table.SetColumn("real_gdp", []float64{100, 101.25, math.NaN()}))
	require.NoError(t, table.SetText("note", []string{"a", "b,c", ""}))
	require.NoError(t, table.SetColumn("real_gdp_log", []float64{math.Log(100), math.Log(101.25), math.NaN()}))
	return table
}

func sampleResult(t *testing.T) *pipeline.Result {
	t.Helper()
	return &pipeline.Result{
		RunID:      "run-1",
		StartedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		FinishedAt: time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
		Stage:      pipeline.StageDone,
		Series:     []string{"real_gdp"},
		Table:      smallTable(t),
		Volatility: []volatility.Summary{
			{Series: "real_gdp", Method: "hp", Column: "real_gdp_log_hp_cycle", Reference: "real_gdp_log", StdDev: 0.0125, CV: 0.0025},
			{Series: "real_gdp", Method: "growth", Column: "real_gdp_log_diff", Reference: "real_gdp_log_diff", StdDev: 0.01, CV: math.NaN()},
		},
		Regressions: []pipeline.RegressionResult{{
			Method: "hp",
			Result: regression.Result{
				Dependent: "a", Independent: "b", Beta: 1, StdErr: 0,
				TStat: math.Inf(1), PValue: 0, CILower: 1, CIUpper: 1, RSquared: 1, N: 10,
			},
		}},
		Crossovers: []time.Time{testStart.AddDate(0, 3, 0)},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, smallTable(t), 3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,real_gdp,note,real_gdp_log", lines[0])
	assert.Equal(t, "2000-01-01,100.000,a,4.605", lines[1])
	assert.Equal(t, `2000-04-01,101.250,"b,c",4.618`, lines[2])
	assert.Equal(t, "2000-07-01,,,", lines[3])
}

func TestTableData_RoundTrip(t *testing.T) {
	original := smallTable(t)
	d := NewTableData(original)

	assert.Equal(t, []string{"2000-01-01", "2000-04-01", "2000-07-01"}, d.Index)
	require.Len(t, d.Columns, 3)
	assert.Equal(t, "note", d.Columns[1].Name)
	assert.Nil(t, d.Columns[1].Values)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"values":[100,101.25,null]`)

	var decoded models.TableData
	require.NoError(t, json.Unmarshal(data, &decoded))
	back, err := FromTableData(decoded)
	require.NoError(t, err)

	assert.Equal(t, original.Columns(), back.Columns())
	assert.Equal(t, original.Index(), back.Index())
	gdp, err := back.Column("real_gdp")
	require.NoError(t, err)
	assert.Equal(t, 101.25, gdp[1])
	assert.True(t, analytics.IsMissing(gdp[2]))
	assert.False(t, back.IsNumeric("note"))
}

func TestFromTableData_Errors(t *testing.T) {
	_, err := FromTableData(models.TableData{
		Index:   []string{"2000Q1", "not a date"},
		Columns: []models.ColumnData{{Name: "x", Values: []models.Float{1, 2}}},
	})
	assert.True(t, errors.Is(err, analytics.ErrInvalidIndex))

	_, err = FromTableData(models.TableData{
		Index:   []string{"2000Q2", "2000Q1"},
		Columns: []models.ColumnData{{Name: "x", Values: []models.Float{1, 2}}},
	})
	assert.True(t, errors.Is(err, analytics.ErrInvalidIndex))

	table, err := FromTableData(models.TableData{
		Index:      []string{"01.2000", "04.2000"},
		DateLayout: "01.2006",
		Columns:    []models.ColumnData{{Name: "x", Values: []models.Float{1, 2}}},
	})
	require.NoError(t, err)
	assert.True(t, table.IsQuarterly())
}

func TestNewDocument(t *testing.T) {
	res := sampleResult(t)
	doc := NewDocument(res, false)

	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, "2026-01-02T03:04:05Z", doc.StartedAt)
	assert.Equal(t, "done", doc.Stage)
	assert.Nil(t, doc.Table)
	require.Len(t, doc.Volatility, 2)
	require.Len(t, doc.Regressions, 1)
	assert.Equal(t, []string{"2000-04-01"}, doc.Crossovers)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, doc))

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &generic))
	reg := generic["regressions"].([]interface{})[0].(map[string]interface{})
	assert.Nil(t, reg["t_stat"])
	assert.Equal(t, 1.0, reg["beta"])
	vol := generic["volatility"].([]interface{})[1].(map[string]interface{})
	assert.Nil(t, vol["cv"])

	withTable := NewDocument(res, true)
	require.NotNil(t, withTable.Table)
	assert.Len(t, withTable.Table.Index, 3)
}

func TestNewDocument_PartialResult(t *testing.T) {
	doc := NewDocument(&pipeline.Result{RunID: "x", Stage: pipeline.StageLoad}, true)
	assert.Equal(t, "", doc.FinishedAt)
	assert.Nil(t, doc.Table)
	assert.NotNil(t, doc.Volatility)
	assert.NotNil(t, doc.Crossovers)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, sampleResult(t), 4))
	out := buf.String()

	assert.Contains(t, out, "Run run-1 (3 periods, 2000-01-01 to 2000-07-01)")
	assert.Contains(t, out, "SERIES")
	assert.Contains(t, out, "real_gdp_log_hp_cycle")
	assert.Contains(t, out, "0.0125")
	assert.Contains(t, out, "+Inf")
	assert.Contains(t, out, "NaN")
	assert.Contains(t, out, "Crossovers (1)")
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	paths, err := Save(dir, sampleResult(t), 6)
	require.NoError(t, err)
	require.Len(t, paths, 4)

	for _, name := range []string{TableFile, VolatilityFile, RegressionsFile, ResultFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}

	data, err := os.ReadFile(filepath.Join(dir, ResultFile))
	require.NoError(t, err)
	var doc models.AnalysisResponse
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Nil(t, doc.Table)
}

func TestSave_PipelineRun(t *testing.T) {
	n := 80
	gdp := make([]float64, n)
	gov := make([]float64, n)
	for i := range gdp {
		x := float64(i)
		gdp[i] = 1000 * math.Exp(0.01*x) * (1 + 0.02*math.Sin(x/3))
		gov[i] = 200 * math.Exp(0.008*x) * (1 + 0.01*math.Cos(x/2))
	}
	table, err := analytics.NewTable(analytics.QuarterlyIndex(testStart, n))
	require.NoError(t, err)
	require.NoError(t, table.SetColumn("real_gdp", gdp))
	require.NoError(t, table.SetColumn("gov_prod", gov))

	runner := pipeline.NewRunner(config.DefaultConfig().Analysis, nil, logging.NewNop())
	res, err := runner.Analyze(context.Background(), table)
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = Save(dir, res, 6)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, TableFile))
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.True(t, strings.HasPrefix(header, "date,real_gdp,gov_prod,real_gdpp,real_gdp_log,"), header)
	assert.Contains(t, header, "real_gdpp_log_bk_cycle")
}
