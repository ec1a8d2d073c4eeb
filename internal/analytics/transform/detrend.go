package transform

import (
	"errors"

	"github.com/soltixdb/cyclix/internal/analytics"
	"gonum.org/v1/gonum/mat"
)

var errNotPositiveDefinite = errors.New("system is not positive definite")

// DetrendConfig holds polynomial detrending parameters
type DetrendConfig struct {
	Order       int    // Polynomial order of the trend, 1 for a linear trend
	TrendColumn string // Defaults to <source>_lin_trend
	CycleColumn string // Defaults to <source>_lin_cycle
}

// DefaultDetrendConfig returns a linear detrending configuration
func DefaultDetrendConfig() DetrendConfig {
	return DetrendConfig{Order: 1}
}

// LinearDetrend fits source on a polynomial in the time index by ordinary
// least squares. trend is the fitted curve and cycle the residual.
func LinearDetrend(t *analytics.Table, source string, cfg DetrendConfig) error {
	if cfg.Order < 0 {
		return analytics.NewOpError("linear_detrend", source, analytics.ErrInvalidParameter,
			"order must be non-negative, got %d", cfg.Order)
	}
	values, start, end, err := span(t, "linear_detrend", source)
	if err != nil {
		return err
	}

	y := values[start:end]
	if len(y) < cfg.Order+2 {
		return analytics.NewOpError("linear_detrend", source, analytics.ErrInsufficientData,
			"need at least %d observations for order %d, have %d", cfg.Order+2, cfg.Order, len(y))
	}

	trend, err := polyFit(y, cfg.Order)
	if err != nil {
		return analytics.NewOpError("linear_detrend", source, analytics.ErrDomain, "%v", err)
	}

	cycle := make([]float64, len(y))
	for i := range y {
		cycle[i] = y[i] - trend[i]
	}

	trendCol, cycleCol := cfg.TrendColumn, cfg.CycleColumn
	if trendCol == "" {
		trendCol = TrendColumn(source, MethodLinear)
	}
	if cycleCol == "" {
		cycleCol = CycleColumn(source, MethodLinear)
	}
	return writePair(t, trendCol, cycleCol, start, trend, cycle)
}

// polyFit returns the least-squares fitted values of y on 1, x, ..., x^order.
// The time index is scaled to [0, 1] to keep the Vandermonde matrix well
// conditioned; fitted values do not depend on the scaling.
func polyFit(y []float64, order int) ([]float64, error) {
	n := len(y)
	x := mat.NewDense(n, order+1, nil)
	for i := 0; i < n; i++ {
		s := float64(i) / float64(n-1)
		p := 1.0
		for k := 0; k <= order; k++ {
			x.Set(i, k, p)
			p *= s
		}
	}

	var qr mat.QR
	qr.Factorize(x)

	beta := mat.NewVecDense(order+1, nil)
	if err := qr.SolveVecTo(beta, false, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, err
	}

	var fitted mat.VecDense
	fitted.MulVec(x, beta)

	out := make([]float64, n)
	for i := range out {
		out[i] = fitted.AtVec(i)
	}
	return out, nil
}
