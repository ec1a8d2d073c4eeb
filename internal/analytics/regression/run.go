package regression

import (
	"github.com/soltixdb/cyclix/internal/analytics"
)

// Result is a single-regressor OLS fit: dependent = alpha + beta*independent
type Result struct {
	Dependent   string  `json:"dependent"`
	Independent string  `json:"independent"`
	Alpha       float64 `json:"alpha"`
	AlphaStdErr float64 `json:"alpha_std_err"`
	Beta        float64 `json:"beta"`
	StdErr      float64 `json:"std_err"`
	TStat       float64 `json:"t_stat"`
	PValue      float64 `json:"p_value"`
	CILower     float64 `json:"ci_lower"`
	CIUpper     float64 `json:"ci_upper"`
	RSquared    float64 `json:"r_squared"`
	N           int     `json:"n"`
}

// Run regresses dependent on independent with an intercept over the rows
// where both are present. Inference uses the t distribution with n-2 degrees
// of freedom and a 95% interval for beta.
func Run(t *analytics.Table, dependent, independent string) (Result, error) {
	model, err := Fit(t, dependent, []string{independent})
	if err != nil {
		return Result{}, analytics.WithOp(err, "regression")
	}
	alpha, beta := model.Coefficients[0], model.Coefficients[1]
	return Result{
		Dependent:   dependent,
		Independent: independent,
		Alpha:       alpha.Estimate,
		AlphaStdErr: alpha.StdErr,
		Beta:        beta.Estimate,
		StdErr:      beta.StdErr,
		TStat:       beta.TStat,
		PValue:      beta.PValue,
		CILower:     beta.Lower,
		CIUpper:     beta.Upper,
		RSquared:    model.RSquared,
		N:           model.N,
	}, nil
}
