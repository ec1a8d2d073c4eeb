package transform

import (
	"math"
	"testing"
	"time"

	"github.com/soltixdb/cyclix/internal/analytics"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)

// generateCycleSeries returns a positive level series: exponential trend
// growth with a 20-quarter cycle on top
func generateCycleSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		trend := 1000 * math.Exp(0.008*float64(i))
		cycle := 1 + 0.02*math.Sin(2*math.Pi*float64(i)/20)
		out[i] = trend * cycle
	}
	return out
}

// generateLinear returns slope*i + intercept
func generateLinear(n int, slope, intercept float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = slope*float64(i) + intercept
	}
	return out
}

func newTable(t *testing.T, name string, values []float64) *analytics.Table {
	t.Helper()
	table, err := analytics.NewTable(analytics.QuarterlyIndex(testStart, len(values)))
	require.NoError(t, err)
	require.NoError(t, table.SetColumn(name, values))
	return table
}

func mustColumn(t *testing.T, table *analytics.Table, name string) []float64 {
	t.Helper()
	values, err := table.Column(name)
	require.NoError(t, err)
	return values
}

// assertDecomposes checks trend + cycle == source on every row where the
// cycle is defined and that trend and cycle are missing on the same rows
func assertDecomposes(t *testing.T, table *analytics.Table, source string, m Method) {
	t.Helper()
	y := mustColumn(t, table, source)
	trend := mustColumn(t, table, TrendColumn(source, m))
	cycle := mustColumn(t, table, CycleColumn(source, m))
	for i := range y {
		if analytics.IsMissing(cycle[i]) {
			require.True(t, analytics.IsMissing(trend[i]), "row %d", i)
			continue
		}
		require.InDelta(t, y[i], trend[i]+cycle[i], 1e-9, "row %d", i)
	}
}
