package regression

import (
	"github.com/soltixdb/cyclix/internal/analytics"
	"gonum.org/v1/gonum/mat"
)

// VAR is a fitted vector autoregression with a constant:
//
//	y_t = c + A_1 y_{t-1} + ... + A_p y_{t-p} + e_t
type VAR struct {
	Columns   []string
	Lags      int
	N         int          // observations used in estimation
	Intercept []float64    // c
	Coefs     []*mat.Dense // A_1..A_p, each m×m; row i is the equation for Columns[i]
	SigmaU    *mat.SymDense
	last      [][]float64 // last p observations, oldest first
}

// FitVAR estimates a VAR(lags) on columns equation by equation. Estimation
// uses the rows where every column is present, which must be contiguous.
func FitVAR(t *analytics.Table, columns []string, lags int) (*VAR, error) {
	if len(columns) == 0 {
		return nil, analytics.NewOpError("var", "", analytics.ErrInvalidParameter, "no columns")
	}
	if lags < 1 {
		return nil, analytics.NewOpError("var", "", analytics.ErrInvalidParameter, "lags must be at least 1, got %d", lags)
	}

	m := len(columns)
	series := make([][]float64, m)
	start, end := 0, t.Len()
	for i, name := range columns {
		values, err := t.Column(name)
		if err != nil {
			return nil, analytics.WithOp(err, "var")
		}
		s, e, err := analytics.ValidSpan(values)
		if err != nil {
			return nil, analytics.WithOp(withColumn(err, name), "var")
		}
		start, end = max(start, s), min(end, e)
		series[i] = values
	}

	obs := end - start
	k := 1 + m*lags
	rows := obs - lags
	if rows <= k {
		return nil, analytics.NewOpError("var", "", analytics.ErrInsufficientData,
			"need more than %d observations for %d variables and %d lags, have %d", k+lags, m, lags, max(obs, 0))
	}

	x := mat.NewDense(rows, k, nil)
	y := mat.NewDense(rows, m, nil)
	for r := 0; r < rows; r++ {
		at := start + lags + r
		x.Set(r, 0, 1)
		for j := 1; j <= lags; j++ {
			for v := 0; v < m; v++ {
				x.Set(r, 1+(j-1)*m+v, series[v][at-j])
			}
		}
		for v := 0; v < m; v++ {
			y.Set(r, v, series[v][at])
		}
	}

	var qr mat.QR
	qr.Factorize(x)
	var b mat.Dense
	if err := qr.SolveTo(&b, false, y); err != nil {
		return nil, analytics.NewOpError("var", "", analytics.ErrDomain, "%v", err)
	}

	model := &VAR{
		Columns:   append([]string(nil), columns...),
		Lags:      lags,
		N:         rows,
		Intercept: make([]float64, m),
		Coefs:     make([]*mat.Dense, lags),
	}
	for i := 0; i < m; i++ {
		model.Intercept[i] = b.At(0, i)
	}
	for j := 0; j < lags; j++ {
		a := mat.NewDense(m, m, nil)
		for i := 0; i < m; i++ {
			for v := 0; v < m; v++ {
				a.Set(i, v, b.At(1+j*m+v, i))
			}
		}
		model.Coefs[j] = a
	}

	var fitted, resid mat.Dense
	fitted.Mul(x, &b)
	resid.Sub(y, &fitted)
	sigma := mat.NewSymDense(m, nil)
	sigma.SymOuterK(1/float64(rows-k), resid.T())
	model.SigmaU = sigma

	model.last = make([][]float64, lags)
	for j := 0; j < lags; j++ {
		row := make([]float64, m)
		for v := 0; v < m; v++ {
			row[v] = series[v][end-lags+j]
		}
		model.last[j] = row
	}
	return model, nil
}

// Forecast iterates the fitted system steps periods past the last
// observation. Row h of the result is the forecast for horizon h+1. A
// negative steps is treated as zero.
func (v *VAR) Forecast(steps int) [][]float64 {
	steps = max(steps, 0)
	m := len(v.Columns)
	history := make([][]float64, 0, len(v.last)+steps)
	history = append(history, v.last...)

	out := make([][]float64, steps)
	for h := 0; h < steps; h++ {
		next := append([]float64(nil), v.Intercept...)
		for j := 1; j <= v.Lags; j++ {
			prev := history[len(history)-j]
			a := v.Coefs[j-1]
			for i := 0; i < m; i++ {
				for k := 0; k < m; k++ {
					next[i] += a.At(i, k) * prev[k]
				}
			}
		}
		history = append(history, next)
		out[h] = next
	}
	return out
}

// IRF returns the non-orthogonalised impulse responses Φ_0..Φ_steps with
// Φ_0 = I and Φ_i = Σ_{j=1..min(i,p)} Φ_{i-j} A_j. Element (r, c) of Φ_i is
// the response of Columns[r] i periods after a unit shock to Columns[c].
// A negative steps is treated as zero.
func (v *VAR) IRF(steps int) []*mat.Dense {
	steps = max(steps, 0)
	m := len(v.Columns)
	phi := make([]*mat.Dense, steps+1)

	identity := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		identity.Set(i, i, 1)
	}
	phi[0] = identity

	for i := 1; i <= steps; i++ {
		acc := mat.NewDense(m, m, nil)
		for j := 1; j <= min(i, v.Lags); j++ {
			var term mat.Dense
			term.Mul(phi[i-j], v.Coefs[j-1])
			acc.Add(acc, &term)
		}
		phi[i] = acc
	}
	return phi
}

func withColumn(err error, column string) error {
	if opErr, ok := err.(*analytics.OpError); ok && opErr.Column == "" {
		relabeled := *opErr
		relabeled.Column = column
		return &relabeled
	}
	return err
}
