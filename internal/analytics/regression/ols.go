// Package regression fits ordinary least squares models and vector
// autoregressions over table columns.
package regression

import (
	"math"
	"time"

	"github.com/soltixdb/cyclix/internal/analytics"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ConstantName labels the intercept in a coefficient table
const ConstantName = "const"

type fitOptions struct {
	constant   bool
	confidence float64
}

// Option configures Fit
type Option func(*fitOptions)

// WithConstant controls whether an intercept is estimated. Default true.
func WithConstant(constant bool) Option {
	return func(o *fitOptions) {
		o.constant = constant
	}
}

// WithConfidence sets the confidence level of coefficient intervals. Default 0.95.
func WithConfidence(level float64) Option {
	return func(o *fitOptions) {
		o.confidence = level
	}
}

// Coefficient is one row of a fitted model's coefficient table
type Coefficient struct {
	Name     string  `json:"name"`
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	TStat    float64 `json:"t_stat"`
	PValue   float64 `json:"p_value"`
	Lower    float64 `json:"ci_lower"`
	Upper    float64 `json:"ci_upper"`
}

// Model is a fitted OLS regression
type Model struct {
	Dependent    string        `json:"dependent"`
	Regressors   []string      `json:"regressors"`
	Constant     bool          `json:"constant"`
	Confidence   float64       `json:"confidence"`
	Coefficients []Coefficient `json:"coefficients"`
	N            int           `json:"n"`
	DF           int           `json:"df"`
	RSquared     float64       `json:"r_squared"`
	AdjRSquared  float64       `json:"adj_r_squared"`
	SigmaSq      float64       `json:"sigma_sq"`
	Residuals    []float64     `json:"residuals"`
	Periods      []time.Time   `json:"periods"`
}

// Coefficient returns the named coefficient
func (m *Model) Coefficient(name string) (Coefficient, bool) {
	for _, c := range m.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// Fit regresses dependent on regressors over the rows where every variable is
// present
func Fit(t *analytics.Table, dependent string, regressors []string, opts ...Option) (*Model, error) {
	o := fitOptions{constant: true, confidence: 0.95}
	for _, opt := range opts {
		opt(&o)
	}
	if len(regressors) == 0 {
		return nil, analytics.NewOpError("ols", dependent, analytics.ErrInvalidParameter, "no regressors")
	}
	if o.confidence <= 0 || o.confidence >= 1 {
		return nil, analytics.NewOpError("ols", dependent, analytics.ErrInvalidParameter,
			"confidence must be in (0, 1), got %g", o.confidence)
	}

	y, xs, periods, err := completeRows(t, dependent, regressors)
	if err != nil {
		return nil, err
	}

	k := len(regressors)
	if o.constant {
		k++
	}
	n := len(y)
	if n <= k {
		return nil, analytics.NewOpError("ols", dependent, analytics.ErrInsufficientData,
			"need more than %d complete rows, have %d", k, n)
	}
	if o.constant {
		for j, x := range xs {
			if isConstant(x) {
				return nil, analytics.NewOpError("ols", regressors[j], analytics.ErrDomain, "regressor has zero variance")
			}
		}
	}

	x := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		col := 0
		if o.constant {
			x.Set(i, 0, 1)
			col = 1
		}
		for j := range xs {
			x.Set(i, col+j, xs[j][i])
		}
	}
	yv := mat.NewVecDense(n, y)

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())
	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, analytics.NewOpError("ols", dependent, analytics.ErrDomain, "regressors are collinear")
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), yv)
	beta := mat.NewVecDense(k, nil)
	if err := chol.SolveVecTo(beta, &xty); err != nil {
		return nil, analytics.NewOpError("ols", dependent, analytics.ErrDomain, "%v", err)
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nil, analytics.NewOpError("ols", dependent, analytics.ErrDomain, "%v", err)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, beta)
	residuals := make([]float64, n)
	sse := 0.0
	for i := range residuals {
		residuals[i] = y[i] - fitted.AtVec(i)
		sse += residuals[i] * residuals[i]
	}

	df := n - k
	sigmaSq := sse / float64(df)
	r2, adj := rSquared(y, sse, n, k, o.constant)

	names := regressors
	if o.constant {
		names = append([]string{ConstantName}, regressors...)
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	crit := dist.Quantile(1 - (1-o.confidence)/2)

	coefs := make([]Coefficient, k)
	for j := 0; j < k; j++ {
		se := math.Sqrt(sigmaSq * cov.At(j, j))
		coefs[j] = coefficient(names[j], beta.AtVec(j), se, crit, dist)
	}

	return &Model{
		Dependent:    dependent,
		Regressors:   append([]string(nil), regressors...),
		Constant:     o.constant,
		Confidence:   o.confidence,
		Coefficients: coefs,
		N:            n,
		DF:           df,
		RSquared:     r2,
		AdjRSquared:  adj,
		SigmaSq:      sigmaSq,
		Residuals:    residuals,
		Periods:      periods,
	}, nil
}

// Predict evaluates the model on t. Rows where any regressor is missing are
// missing in the result.
func (m *Model) Predict(t *analytics.Table) ([]float64, error) {
	cols := make([][]float64, len(m.Regressors))
	for j, name := range m.Regressors {
		values, err := t.Column(name)
		if err != nil {
			return nil, analytics.WithOp(err, "predict")
		}
		cols[j] = values
	}

	offset := 0
	intercept := 0.0
	if m.Constant {
		intercept = m.Coefficients[0].Estimate
		offset = 1
	}

	out := make([]float64, t.Len())
	for i := range out {
		v := intercept
		for j := range cols {
			v += m.Coefficients[offset+j].Estimate * cols[j][i]
		}
		out[i] = v
	}
	return out, nil
}

func coefficient(name string, est, se, crit float64, dist distuv.StudentsT) Coefficient {
	c := Coefficient{Name: name, Estimate: est, StdErr: se}
	switch {
	case se > 0:
		c.TStat = est / se
		c.PValue = 2 * (1 - dist.CDF(math.Abs(c.TStat)))
	case est == 0:
		c.TStat, c.PValue = 0, 1
	default:
		c.TStat, c.PValue = math.Inf(sign(est)), 0
	}
	c.Lower = est - crit*se
	c.Upper = est + crit*se
	return c
}

func rSquared(y []float64, sse float64, n, k int, withConstant bool) (r2, adj float64) {
	mean := 0.0
	if withConstant {
		for _, v := range y {
			mean += v
		}
		mean /= float64(n)
	}
	sst := 0.0
	for _, v := range y {
		d := v - mean
		sst += d * d
	}
	if sst == 0 {
		return math.NaN(), math.NaN()
	}
	r2 = 1 - sse/sst

	dfTotal := n
	if withConstant {
		dfTotal = n - 1
	}
	adj = 1 - (1-r2)*float64(dfTotal)/float64(n-k)
	return r2, adj
}

// completeRows returns the rows where dependent and every regressor are present
func completeRows(t *analytics.Table, dependent string, regressors []string) ([]float64, [][]float64, []time.Time, error) {
	dep, err := t.Column(dependent)
	if err != nil {
		return nil, nil, nil, analytics.WithOp(err, "ols")
	}
	raw := make([][]float64, len(regressors))
	for j, name := range regressors {
		raw[j], err = t.Column(name)
		if err != nil {
			return nil, nil, nil, analytics.WithOp(err, "ols")
		}
	}

	var y []float64
	var periods []time.Time
	xs := make([][]float64, len(regressors))
	for i := range dep {
		if analytics.IsMissing(dep[i]) {
			continue
		}
		complete := true
		for j := range raw {
			if analytics.IsMissing(raw[j][i]) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		y = append(y, dep[i])
		for j := range raw {
			xs[j] = append(xs[j], raw[j][i])
		}
		periods = append(periods, t.Period(i))
	}
	return y, xs, periods, nil
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
