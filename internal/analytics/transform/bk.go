package transform

import (
	"fmt"
	"math"

	"github.com/soltixdb/cyclix/internal/analytics"
)

// BKConfig holds Baxter-King band-pass filter parameters
type BKConfig struct {
	Low         int    // Shortest period passed, 6 quarters for business cycles
	High        int    // Longest period passed, 32 quarters for business cycles
	K           int    // Lead/lag length; K rows are lost at each end
	TrendColumn string // Defaults to <source>_bk_trend
	CycleColumn string // Defaults to <source>_bk_cycle
}

// DefaultBKConfig returns the Baxter-King quarterly business-cycle configuration
func DefaultBKConfig() BKConfig {
	return BKConfig{Low: 6, High: 32, K: 12}
}

// Validate checks the filter parameters
func (c BKConfig) Validate() error {
	if c.Low < 2 {
		return fmt.Errorf("low must be at least 2, got %d", c.Low)
	}
	if c.High <= c.Low {
		return fmt.Errorf("high (%d) must exceed low (%d)", c.High, c.Low)
	}
	if c.K < 1 {
		return fmt.Errorf("K must be at least 1, got %d", c.K)
	}
	return nil
}

// BK applies the Baxter-King band-pass filter to source. The cycle is a
// symmetric moving average of order K, so the first and last K rows of the
// valid span have no cycle value; trend = source - cycle on the same rows.
func BK(t *analytics.Table, source string, cfg BKConfig) error {
	if err := cfg.Validate(); err != nil {
		return analytics.NewOpError("bk_filter", source, analytics.ErrInvalidParameter, "%v", err)
	}
	values, start, end, err := span(t, "bk_filter", source)
	if err != nil {
		return err
	}

	y := values[start:end]
	if len(y) <= 2*cfg.K {
		return analytics.NewOpError("bk_filter", source, analytics.ErrInsufficientData,
			"need more than %d observations for K=%d, have %d", 2*cfg.K, cfg.K, len(y))
	}

	w := bkWeights(float64(cfg.Low), float64(cfg.High), cfg.K)
	trend := make([]float64, len(y))
	cycle := make([]float64, len(y))
	for i := range y {
		if i < cfg.K || i >= len(y)-cfg.K {
			trend[i] = analytics.Missing()
			cycle[i] = analytics.Missing()
			continue
		}
		c := w[0] * y[i]
		for j := 1; j <= cfg.K; j++ {
			c += w[j] * (y[i-j] + y[i+j])
		}
		cycle[i] = c
		trend[i] = y[i] - c
	}

	trendCol, cycleCol := cfg.TrendColumn, cfg.CycleColumn
	if trendCol == "" {
		trendCol = TrendColumn(source, MethodBK)
	}
	if cycleCol == "" {
		cycleCol = CycleColumn(source, MethodBK)
	}
	return writePair(t, trendCol, cycleCol, start, trend, cycle)
}

// bkWeights returns a_0..a_K for the truncated ideal band-pass filter between
// periods low and high, shifted so the 2K+1 symmetric weights sum to zero.
func bkWeights(low, high float64, k int) []float64 {
	w1 := 2 * math.Pi / high
	w2 := 2 * math.Pi / low

	b := make([]float64, k+1)
	b[0] = (w2 - w1) / math.Pi
	sum := b[0]
	for j := 1; j <= k; j++ {
		fj := float64(j)
		b[j] = (math.Sin(w2*fj) - math.Sin(w1*fj)) / (math.Pi * fj)
		sum += 2 * b[j]
	}

	theta := sum / float64(2*k+1)
	for j := range b {
		b[j] -= theta
	}
	return b
}
