package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/cyclix/internal/analytics"
	"github.com/soltixdb/cyclix/internal/config"
	"github.com/soltixdb/cyclix/internal/loader"
	"github.com/soltixdb/cyclix/internal/logging"
	"github.com/soltixdb/cyclix/internal/models"
	"github.com/soltixdb/cyclix/internal/pipeline"
	"github.com/soltixdb/cyclix/internal/report"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

type stubLoader struct {
	tables map[string]*analytics.Table
}

func (s *stubLoader) Load(_ context.Context, src loader.Source) (*analytics.Table, error) {
	t, ok := s.tables[src.Location]
	if !ok {
		return nil, &loader.LoadError{Location: src.Location, Kind: loader.ErrUnreachable}
	}
	return t.Clone(), nil
}

func newTestHandler(cfg config.Config, l pipeline.TableLoader) *Handler {
	return New(logging.NewNop(), cfg, l)
}

// newTestApp registers the API routes the way the router does
func newTestApp(h *Handler) *fiber.App {
	app := fiber.New()
	app.Get("/health", h.Health)
	v1 := app.Group("/v1")
	v1.Post("/analyses", h.Analyses)
	v1.Post("/transforms", h.Transforms)
	v1.Post("/volatility", h.Volatility)
	v1.Post("/regressions", h.Regressions)
	v1.Post("/var", h.VAR)
	app.Use(h.NotFound)
	return app
}

// generateEconomy returns quarterly GDP and government spending with
// exponential trends and cycles of different periods
func generateEconomy(t *testing.T, n int) *analytics.Table {
	t.Helper()
	gdp := make([]float64, n)
	gov := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		gdp[i] = 5000 * math.Exp(0.007*x) * (1 + 0.02*math.Sin(2*math.Pi*x/20))
		gov[i] = 900 * math.Exp(0.006*x) * (1 + 0.01*math.Cos(2*math.Pi*x/14))
	}
	table, err := analytics.NewTable(analytics.QuarterlyIndex(testStart, n))
	require.NoError(t, err)
	require.NoError(t, table.SetColumn("real_gdp", gdp))
	require.NoError(t, table.SetColumn("gov_prod", gov))
	return table
}

// tableData builds an inline table from named columns of equal length
func tableData(t *testing.T, columns map[string][]float64, order ...string) models.TableData {
	t.Helper()
	require.NotEmpty(t, order)
	table, err := analytics.NewTable(analytics.QuarterlyIndex(testStart, len(columns[order[0]])))
	require.NoError(t, err)
	for _, name := range order {
		require.NoError(t, table.SetColumn(name, columns[name]))
	}
	return report.NewTableData(table)
}

// doJSON sends body as JSON and returns the status and raw response
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeError(t *testing.T, data []byte) models.ErrorDetail {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &resp), string(data))
	return resp.Error
}
