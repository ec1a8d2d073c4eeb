// Package transform derives new columns from existing table columns: log,
// difference, and the Hodrick-Prescott, Baxter-King and polynomial detrending
// filters. Every function appends its output columns to the table in place.
package transform

import (
	"errors"
	"math"

	"github.com/soltixdb/cyclix/internal/analytics"
)

// Method identifies a trend/cycle decomposition in derived column names
type Method string

const (
	MethodHP     Method = "hp"
	MethodBK     Method = "bk"
	MethodLinear Method = "lin"
)

// Methods lists the decomposition methods in the order the pipeline applies them
func Methods() []Method {
	return []Method{MethodHP, MethodBK, MethodLinear}
}

// LogColumn returns the default name of the log of source
func LogColumn(source string) string {
	return source + "_log"
}

// DiffColumn returns the default name of the difference of source
func DiffColumn(source string) string {
	return source + "_diff"
}

// TrendColumn returns the default trend column name for a decomposition
func TrendColumn(source string, m Method) string {
	return source + "_" + string(m) + "_trend"
}

// CycleColumn returns the default cycle column name for a decomposition
func CycleColumn(source string, m Method) string {
	return source + "_" + string(m) + "_cycle"
}

// Log sets dest = ln(source). Missing values stay missing; any other value
// that is not strictly positive is a domain error and nothing is written.
func Log(t *analytics.Table, source, dest string) error {
	values, err := t.Column(source)
	if err != nil {
		return analytics.WithOp(err, "log_transform")
	}
	if dest == "" {
		dest = LogColumn(source)
	}

	out := make([]float64, len(values))
	for i, v := range values {
		if analytics.IsMissing(v) {
			out[i] = v
			continue
		}
		if v <= 0 {
			return analytics.NewOpError("log_transform", source, analytics.ErrDomain,
				"value %g at row %d is not positive", v, i)
		}
		out[i] = math.Log(v)
	}
	return t.SetColumn(dest, out)
}

// Difference sets dest[i] = source[i] - source[i-periods]. The first periods
// rows of dest are missing.
func Difference(t *analytics.Table, source, dest string, periods int) error {
	if periods < 1 {
		return analytics.NewOpError("difference", source, analytics.ErrInvalidParameter,
			"periods must be at least 1, got %d", periods)
	}
	values, err := t.Column(source)
	if err != nil {
		return analytics.WithOp(err, "difference")
	}
	if dest == "" {
		dest = DiffColumn(source)
	}

	out := make([]float64, len(values))
	for i := range values {
		if i < periods {
			out[i] = analytics.Missing()
			continue
		}
		out[i] = values[i] - values[i-periods]
	}
	return t.SetColumn(dest, out)
}

// span loads a source column and locates its contiguous valid span
func span(t *analytics.Table, op, source string) (values []float64, start, end int, err error) {
	values, err = t.Column(source)
	if err != nil {
		return nil, 0, 0, analytics.WithOp(err, op)
	}
	start, end, err = analytics.ValidSpan(values)
	if err != nil {
		var opErr *analytics.OpError
		if errors.As(err, &opErr) {
			return nil, 0, 0, analytics.NewOpError(op, source, opErr.Err, "%s", opErr.Detail)
		}
		return nil, 0, 0, err
	}
	return values, start, end, nil
}

// writePair stores trend and cycle columns of table length. Rows outside
// [start, end) are missing.
func writePair(t *analytics.Table, trendCol, cycleCol string, start int, trend, cycle []float64) error {
	n := t.Len()
	trendOut := make([]float64, n)
	cycleOut := make([]float64, n)
	for i := 0; i < n; i++ {
		trendOut[i] = analytics.Missing()
		cycleOut[i] = analytics.Missing()
	}
	copy(trendOut[start:], trend)
	copy(cycleOut[start:], cycle)

	if err := t.SetColumn(trendCol, trendOut); err != nil {
		return err
	}
	return t.SetColumn(cycleCol, cycleOut)
}
