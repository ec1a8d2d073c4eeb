package volatility

import (
	"github.com/soltixdb/cyclix/internal/analytics"
	"gonum.org/v1/gonum/stat"
)

// RollingStandardDeviation returns the standard deviation over a trailing
// window ending at each row. The first window-1 rows, and rows whose window
// holds a missing value, are missing.
func RollingStandardDeviation(t *analytics.Table, column string, window int, opts ...Option) ([]float64, error) {
	o := buildOptions(opts)
	values, err := rollingInput(t, "rolling_std_dev", column, window, o)
	if err != nil {
		return nil, err
	}

	out := missingSlice(len(values))
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if hasMissing(w) {
			continue
		}
		out[i] = stdDev(w, o.ddof)
	}
	return out, nil
}

// RollingCoefficientOfVariation divides the rolling standard deviation of
// column by the rolling mean of reference over the same window. A window whose
// reference mean is zero yields a missing value.
func RollingCoefficientOfVariation(t *analytics.Table, column, reference string, window int, opts ...Option) ([]float64, error) {
	sd, err := RollingStandardDeviation(t, column, window, opts...)
	if err != nil {
		return nil, analytics.WithOp(err, "rolling_cv")
	}
	if reference == "" {
		reference = column
	}
	ref, err := t.Column(reference)
	if err != nil {
		return nil, analytics.WithOp(err, "rolling_cv")
	}

	out := missingSlice(len(ref))
	for i := window - 1; i < len(ref); i++ {
		if analytics.IsMissing(sd[i]) {
			continue
		}
		w := ref[i-window+1 : i+1]
		if hasMissing(w) {
			continue
		}
		if mean := stat.Mean(w, nil); mean != 0 {
			out[i] = sd[i] / mean
		}
	}
	return out, nil
}

func rollingInput(t *analytics.Table, op, column string, window int, o options) ([]float64, error) {
	if window < 1 {
		return nil, analytics.NewOpError(op, column, analytics.ErrInvalidParameter,
			"window must be at least 1, got %d", window)
	}
	if window <= o.ddof {
		return nil, analytics.NewOpError(op, column, analytics.ErrInvalidParameter,
			"window %d must exceed ddof %d", window, o.ddof)
	}
	values, err := t.Column(column)
	if err != nil {
		return nil, analytics.WithOp(err, op)
	}
	return values, nil
}

func missingSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = analytics.Missing()
	}
	return out
}

func hasMissing(values []float64) bool {
	for _, v := range values {
		if analytics.IsMissing(v) {
			return true
		}
	}
	return false
}
