package transform

import (
	"github.com/soltixdb/cyclix/internal/analytics"
	"gonum.org/v1/gonum/mat"
)

// HPConfig holds Hodrick-Prescott filter parameters
type HPConfig struct {
	Lambda      float64 // Smoothing parameter, 1600 for quarterly data
	TrendColumn string  // Defaults to <source>_hp_trend
	CycleColumn string  // Defaults to <source>_hp_cycle
}

// DefaultHPConfig returns the quarterly-data HP configuration
func DefaultHPConfig() HPConfig {
	return HPConfig{Lambda: 1600}
}

// HP applies the Hodrick-Prescott filter to source. The trend τ minimises
//
//	Σ (y_t - τ_t)² + λ Σ ((τ_{t+1} - τ_t) - (τ_t - τ_{t-1}))²
//
// and the cycle is y - τ.
func HP(t *analytics.Table, source string, cfg HPConfig) error {
	if cfg.Lambda < 0 {
		return analytics.NewOpError("hp_filter", source, analytics.ErrInvalidParameter,
			"lambda must be non-negative, got %g", cfg.Lambda)
	}
	values, start, end, err := span(t, "hp_filter", source)
	if err != nil {
		return err
	}

	y := values[start:end]
	trend, err := hpTrend(y, cfg.Lambda)
	if err != nil {
		return analytics.NewOpError("hp_filter", source, analytics.ErrDomain, "%v", err)
	}

	cycle := make([]float64, len(y))
	for i := range y {
		cycle[i] = y[i] - trend[i]
	}

	trendCol, cycleCol := cfg.TrendColumn, cfg.CycleColumn
	if trendCol == "" {
		trendCol = TrendColumn(source, MethodHP)
	}
	if cycleCol == "" {
		cycleCol = CycleColumn(source, MethodHP)
	}
	return writePair(t, trendCol, cycleCol, start, trend, cycle)
}

// hpTrend solves (I + λ DᵀD) τ = y where D is the (n-2)×n second-difference
// operator. The system is symmetric positive definite with bandwidth 2.
func hpTrend(y []float64, lambda float64) ([]float64, error) {
	n := len(y)
	if n < 3 || lambda == 0 {
		return append([]float64(nil), y...), nil
	}

	a := mat.NewSymBandDense(n, 2, nil)
	for i := 0; i < n; i++ {
		a.SetSymBand(i, i, 1)
	}

	// Accumulate λ DᵀD one difference row at a time
	d := [3]float64{1, -2, 1}
	for r := 0; r < n-2; r++ {
		for p := 0; p < 3; p++ {
			for q := p; q < 3; q++ {
				i, j := r+p, r+q
				a.SetSymBand(i, j, a.At(i, j)+lambda*d[p]*d[q])
			}
		}
	}

	var chol mat.BandCholesky
	if ok := chol.Factorize(a); !ok {
		return nil, errNotPositiveDefinite
	}

	tau := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(tau, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, err
	}

	trend := make([]float64, n)
	for i := range trend {
		trend[i] = tau.AtVec(i)
	}
	return trend, nil
}
