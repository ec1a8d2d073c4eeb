// Package volatility measures how much a series fluctuates: standard deviation
// and coefficient of variation, over the whole series or a rolling window.
package volatility

import (
	"math"

	"github.com/soltixdb/cyclix/internal/analytics"
	"gonum.org/v1/gonum/stat"
)

type options struct {
	ddof int
}

// Option configures a volatility measure
type Option func(*options)

// WithDDOF sets the delta degrees of freedom; the variance divisor is n-ddof.
// The default of 0 gives the population estimator, 1 the sample estimator.
func WithDDOF(ddof int) Option {
	return func(o *options) {
		o.ddof = ddof
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// StandardDeviation returns sqrt(sum((x-mean)^2)/(n-ddof)) over the
// non-missing values of column
func StandardDeviation(t *analytics.Table, column string, opts ...Option) (float64, error) {
	o := buildOptions(opts)
	if o.ddof < 0 {
		return 0, analytics.NewOpError("std_dev", column, analytics.ErrInvalidParameter,
			"ddof must be non-negative, got %d", o.ddof)
	}
	values, err := t.Valid(column)
	if err != nil {
		return 0, analytics.WithOp(err, "std_dev")
	}
	if len(values) < 2 || len(values) <= o.ddof {
		return 0, analytics.NewOpError("std_dev", column, analytics.ErrInsufficientData,
			"need at least 2 values, have %d", len(values))
	}
	return stdDev(values, o.ddof), nil
}

// CoefficientOfVariation returns the standard deviation of column divided by
// the mean of reference. An empty reference uses column itself. Cycles have a
// mean near zero, so callers normally pass the level the cycle was taken from.
func CoefficientOfVariation(t *analytics.Table, column, reference string, opts ...Option) (float64, error) {
	sd, err := StandardDeviation(t, column, opts...)
	if err != nil {
		return 0, analytics.WithOp(err, "coefficient_of_variation")
	}
	if reference == "" {
		reference = column
	}
	ref, err := t.Valid(reference)
	if err != nil {
		return 0, analytics.WithOp(err, "coefficient_of_variation")
	}
	if len(ref) == 0 {
		return 0, analytics.NewOpError("coefficient_of_variation", reference, analytics.ErrInsufficientData,
			"reference has no values")
	}
	mean := stat.Mean(ref, nil)
	if mean == 0 {
		return 0, analytics.NewOpError("coefficient_of_variation", reference, analytics.ErrDivideByZero,
			"reference mean is zero")
	}
	return sd / mean, nil
}

// stdDev converts gonum's unbiased variance to the n-ddof divisor
func stdDev(values []float64, ddof int) float64 {
	if len(values) < 2 {
		return 0
	}
	n := float64(len(values))
	_, variance := stat.MeanVariance(values, nil)
	return math.Sqrt(variance * (n - 1) / (n - float64(ddof)))
}

// Summary holds the volatility of one analysed column
type Summary struct {
	Series    string  `json:"series"`
	Method    string  `json:"method"`
	Column    string  `json:"column"`
	Reference string  `json:"reference"`
	StdDev    float64 `json:"std_dev"`
	CV        float64 `json:"cv"`
}

// Summarize computes the standard deviation of column and its coefficient of
// variation against reference
func Summarize(t *analytics.Table, series, method, column, reference string, opts ...Option) (Summary, error) {
	sd, err := StandardDeviation(t, column, opts...)
	if err != nil {
		return Summary{}, err
	}
	cv, err := CoefficientOfVariation(t, column, reference, opts...)
	if err != nil {
		return Summary{}, err
	}
	if reference == "" {
		reference = column
	}
	return Summary{
		Series:    series,
		Method:    method,
		Column:    column,
		Reference: reference,
		StdDev:    sd,
		CV:        cv,
	}, nil
}
