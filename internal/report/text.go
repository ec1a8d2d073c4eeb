package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/soltixdb/cyclix/internal/analytics/volatility"
	"github.com/soltixdb/cyclix/internal/models"
	"github.com/soltixdb/cyclix/internal/pipeline"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteVolatility writes one row per series and method
func WriteVolatility(w io.Writer, rows []volatility.Summary, precision int) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "SERIES\tMETHOD\tCOLUMN\tSTD DEV\tCV")
	for _, s := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.Series, s.Method, s.Column,
			formatCell(s.StdDev, precision), formatCell(s.CV, precision))
	}
	return tw.Flush()
}

// WriteRegressions writes one row per regression
func WriteRegressions(w io.Writer, rows []pipeline.RegressionResult, precision int) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "METHOD\tDEPENDENT\tINDEPENDENT\tBETA\tSTD ERR\tT\tP\tCI LOWER\tCI UPPER\tR2\tN")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			r.Method, r.Dependent, r.Independent,
			formatCell(r.Beta, precision),
			formatCell(r.StdErr, precision),
			formatCell(r.TStat, precision),
			formatCell(r.PValue, precision),
			formatCell(r.CILower, precision),
			formatCell(r.CIUpper, precision),
			formatCell(r.RSquared, precision),
			r.N)
	}
	return tw.Flush()
}

// Print writes the run header, both tables and the crossover periods
func Print(w io.Writer, res *pipeline.Result, precision int) error {
	fmt.Fprintf(w, "Run %s (%d periods", res.RunID, tableLen(res))
	if res.Table != nil && res.Table.Len() > 0 {
		idx := res.Table.Index()
		fmt.Fprintf(w, ", %s to %s", idx[0].Format(models.PeriodLayout), idx[len(idx)-1].Format(models.PeriodLayout))
	}
	fmt.Fprintln(w, ")")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Volatility")
	if err := WriteVolatility(w, res.Volatility, precision); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Regressions")
	if err := WriteRegressions(w, res.Regressions, precision); err != nil {
		return err
	}

	if len(res.Crossovers) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Crossovers (%d)\n", len(res.Crossovers))
		for _, p := range res.Crossovers {
			fmt.Fprintln(w, p.Format(models.PeriodLayout))
		}
	}
	return nil
}

func tableLen(res *pipeline.Result) int {
	if res.Table == nil {
		return 0
	}
	return res.Table.Len()
}

// formatCell is formatFloat with a visible marker for missing values
func formatCell(v float64, precision int) string {
	if s := formatFloat(v, precision); s != "" {
		return s
	}
	return "NaN"
}
