package volatility

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/soltixdb/cyclix/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

func newTable(t *testing.T, columns map[string][]float64) *analytics.Table {
	t.Helper()
	n := 0
	for _, v := range columns {
		n = len(v)
	}
	table, err := analytics.FromRecords(analytics.QuarterlyIndex(testStart, n), columns)
	require.NoError(t, err)
	return table
}

func TestStandardDeviation(t *testing.T) {
	nan := analytics.Missing()
	table := newTable(t, map[string][]float64{
		"x": {2, 4, 4, 4, 5, 5, 7, 9},
		"m": {2, nan, 4, 4, 4, 5, 5, 7},
	})

	tests := []struct {
		name   string
		column string
		opts   []Option
		want   float64
	}{
		{"population", "x", nil, 2},
		{"sample", "x", []Option{WithDDOF(1)}, math.Sqrt(32.0 / 7)},
		{"skips missing", "m", nil, stdDev([]float64{2, 4, 4, 4, 5, 5, 7}, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StandardDeviation(table, tt.column, tt.opts...)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestStandardDeviation_Errors(t *testing.T) {
	nan := analytics.Missing()
	table := newTable(t, map[string][]float64{"x": {nan, 1, nan}})

	_, err := StandardDeviation(table, "x")
	assert.True(t, errors.Is(err, analytics.ErrInsufficientData))

	_, err = StandardDeviation(table, "nope")
	assert.True(t, errors.Is(err, analytics.ErrMissingColumn))

	_, err = StandardDeviation(table, "x", WithDDOF(-1))
	assert.True(t, errors.Is(err, analytics.ErrInvalidParameter))
}

func TestConstantSeries(t *testing.T) {
	table := newTable(t, map[string][]float64{"c": {3.5, 3.5, 3.5, 3.5, 3.5}})

	sd, err := StandardDeviation(table, "c")
	require.NoError(t, err)
	assert.InDelta(t, 0, sd, 1e-12)

	cv, err := CoefficientOfVariation(table, "c", "")
	require.NoError(t, err)
	assert.InDelta(t, 0, cv, 1e-12)
}

func TestCoefficientOfVariation_Reference(t *testing.T) {
	table := newTable(t, map[string][]float64{
		"cycle": {-0.02, 0.01, 0.03, -0.01, -0.01},
		"level": {8, 8.1, 8.2, 8.3, 8.4},
	})

	sd, err := StandardDeviation(table, "cycle")
	require.NoError(t, err)

	cv, err := CoefficientOfVariation(table, "cycle", "level")
	require.NoError(t, err)
	assert.InDelta(t, sd/8.2, cv, 1e-12)
}

func TestCoefficientOfVariation_ZeroMean(t *testing.T) {
	table := newTable(t, map[string][]float64{
		"cycle": {-1, 1, -1, 1},
	})

	_, err := CoefficientOfVariation(table, "cycle", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, analytics.ErrDivideByZero))

	var opErr *analytics.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "coefficient_of_variation", opErr.Op)
}

func TestSummarize(t *testing.T) {
	table := newTable(t, map[string][]float64{
		"gdp_hp_cycle": {0.01, -0.01, 0.02, -0.02},
		"gdp_log":      {9, 9.1, 9.2, 9.3},
	})

	s, err := Summarize(table, "gdp", "hp", "gdp_hp_cycle", "gdp_log")
	require.NoError(t, err)
	assert.Equal(t, "gdp", s.Series)
	assert.Equal(t, "hp", s.Method)
	assert.Equal(t, "gdp_log", s.Reference)
	assert.InDelta(t, math.Sqrt(0.00025), s.StdDev, 1e-12)
	assert.InDelta(t, s.StdDev/9.15, s.CV, 1e-12)
}

func TestRollingStandardDeviation(t *testing.T) {
	nan := analytics.Missing()
	table := newTable(t, map[string][]float64{
		"x": {1, 3, 5, nan, 7, 9, 11},
	})

	out, err := RollingStandardDeviation(table, "x", 2)
	require.NoError(t, err)
	require.Len(t, out, 7)

	assert.True(t, analytics.IsMissing(out[0]))
	assert.InDelta(t, 1, out[1], 1e-12)
	assert.InDelta(t, 1, out[2], 1e-12)
	assert.True(t, analytics.IsMissing(out[3]))
	assert.True(t, analytics.IsMissing(out[4]))
	assert.InDelta(t, 1, out[5], 1e-12)
	assert.InDelta(t, 1, out[6], 1e-12)
}

func TestRollingStandardDeviation_InvalidWindow(t *testing.T) {
	table := newTable(t, map[string][]float64{"x": {1, 2, 3}})

	tests := []struct {
		name   string
		window int
		opts   []Option
	}{
		{"zero", 0, nil},
		{"negative", -2, nil},
		{"not above ddof", 1, []Option{WithDDOF(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RollingStandardDeviation(table, "x", tt.window, tt.opts...)
			assert.True(t, errors.Is(err, analytics.ErrInvalidParameter))
		})
	}
}

func TestRollingCoefficientOfVariation(t *testing.T) {
	table := newTable(t, map[string][]float64{
		"x":   {1, 3, 5, 7},
		"ref": {1, -1, 4, 6},
	})

	out, err := RollingCoefficientOfVariation(table, "x", "ref", 2)
	require.NoError(t, err)

	assert.True(t, analytics.IsMissing(out[0]))
	// zero reference mean in the window ending at row 1
	assert.True(t, analytics.IsMissing(out[1]))
	assert.InDelta(t, 1/1.5, out[2], 1e-12)
	assert.InDelta(t, 1/5.0, out[3], 1e-12)
}
