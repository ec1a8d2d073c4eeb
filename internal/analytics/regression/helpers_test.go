package regression

import (
	"math/rand"
	"testing"
	"time"

	"github.com/soltixdb/cyclix/internal/analytics"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

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

// generateLinearPair returns x and y = alpha + beta*x + noise
func generateLinearPair(n int, alpha, beta, noise float64, seed int64) (x, y []float64) {
	rng := rand.New(rand.NewSource(seed))
	x = make([]float64, n)
	y = make([]float64, n)
	for i := range x {
		x[i] = rng.NormFloat64()
		y[i] = alpha + beta*x[i] + noise*rng.NormFloat64()
	}
	return x, y
}

// generateVAR1 simulates y_t = c + A y_{t-1} + e_t for two variables
func generateVAR1(n int, c [2]float64, a [2][2]float64, seed int64) (y1, y2 []float64) {
	rng := rand.New(rand.NewSource(seed))
	y1 = make([]float64, n)
	y2 = make([]float64, n)
	for i := 1; i < n; i++ {
		y1[i] = c[0] + a[0][0]*y1[i-1] + a[0][1]*y2[i-1] + 0.1*rng.NormFloat64()
		y2[i] = c[1] + a[1][0]*y1[i-1] + a[1][1]*y2[i-1] + 0.1*rng.NormFloat64()
	}
	return y1, y2
}
