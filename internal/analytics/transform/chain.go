package transform

import (
	"fmt"

	"github.com/soltixdb/cyclix/internal/analytics"
)

// Kind names a transform step
type Kind string

const (
	KindLog        Kind = "log"
	KindDifference Kind = "diff"
	KindHP         Kind = "hp"
	KindBK         Kind = "bk"
	KindLinear     Kind = "linear"
)

// Step describes one transform so sequences can come from configuration or
// API requests. Unset parameters take the defaults of the matching
// Default*Config function, periods defaults to 1. Lambda and Order are
// pointers because zero is a valid setting for both.
type Step struct {
	Kind        Kind     `json:"kind" mapstructure:"kind"`
	Source      string   `json:"source" mapstructure:"source"`
	Dest        string   `json:"dest,omitempty" mapstructure:"dest"`
	Periods     int      `json:"periods,omitempty" mapstructure:"periods"`
	Lambda      *float64 `json:"lambda,omitempty" mapstructure:"lambda"`
	Low         int      `json:"low,omitempty" mapstructure:"low"`
	High        int      `json:"high,omitempty" mapstructure:"high"`
	K           int      `json:"k,omitempty" mapstructure:"k"`
	Order       *int     `json:"order,omitempty" mapstructure:"order"`
	TrendColumn string   `json:"trend_column,omitempty" mapstructure:"trend_column"`
	CycleColumn string   `json:"cycle_column,omitempty" mapstructure:"cycle_column"`
}

// Apply runs a single step against the table
func Apply(t *analytics.Table, s Step) error {
	switch s.Kind {
	case KindLog:
		return Log(t, s.Source, s.Dest)
	case KindDifference:
		periods := s.Periods
		if periods == 0 {
			periods = 1
		}
		return Difference(t, s.Source, s.Dest, periods)
	case KindHP:
		cfg := DefaultHPConfig()
		if s.Lambda != nil {
			cfg.Lambda = *s.Lambda
		}
		cfg.TrendColumn, cfg.CycleColumn = s.TrendColumn, s.CycleColumn
		return HP(t, s.Source, cfg)
	case KindBK:
		cfg := DefaultBKConfig()
		if s.Low != 0 {
			cfg.Low = s.Low
		}
		if s.High != 0 {
			cfg.High = s.High
		}
		if s.K != 0 {
			cfg.K = s.K
		}
		cfg.TrendColumn, cfg.CycleColumn = s.TrendColumn, s.CycleColumn
		return BK(t, s.Source, cfg)
	case KindLinear:
		cfg := DefaultDetrendConfig()
		if s.Order != nil {
			cfg.Order = *s.Order
		}
		cfg.TrendColumn, cfg.CycleColumn = s.TrendColumn, s.CycleColumn
		return LinearDetrend(t, s.Source, cfg)
	default:
		return analytics.NewOpError("apply", s.Source, analytics.ErrInvalidParameter, "unknown transform kind %q", s.Kind)
	}
}

// Transformer applies transforms to one table in sequence. After the first
// failure every further call is skipped; columns produced before the failure
// stay in the table.
type Transformer struct {
	table *analytics.Table
	err   error
	steps int
}

// New creates a Transformer over t
func New(t *analytics.Table) *Transformer {
	return &Transformer{table: t}
}

func (tr *Transformer) do(name string, fn func() error) *Transformer {
	if tr.err != nil {
		return tr
	}
	if err := fn(); err != nil {
		tr.err = fmt.Errorf("step %d (%s): %w", tr.steps+1, name, err)
		return tr
	}
	tr.steps++
	return tr
}

// Log appends ln(source) as dest
func (tr *Transformer) Log(source, dest string) *Transformer {
	return tr.do("log", func() error { return Log(tr.table, source, dest) })
}

// Difference appends source[i] - source[i-periods] as dest
func (tr *Transformer) Difference(source, dest string, periods int) *Transformer {
	return tr.do("diff", func() error { return Difference(tr.table, source, dest, periods) })
}

// HP appends the Hodrick-Prescott trend and cycle of source
func (tr *Transformer) HP(source string, cfg HPConfig) *Transformer {
	return tr.do("hp", func() error { return HP(tr.table, source, cfg) })
}

// BK appends the Baxter-King trend and cycle of source
func (tr *Transformer) BK(source string, cfg BKConfig) *Transformer {
	return tr.do("bk", func() error { return BK(tr.table, source, cfg) })
}

// LinearDetrend appends the polynomial trend and residual of source
func (tr *Transformer) LinearDetrend(source string, cfg DetrendConfig) *Transformer {
	return tr.do("linear", func() error { return LinearDetrend(tr.table, source, cfg) })
}

// Apply runs a described step
func (tr *Transformer) Apply(s Step) *Transformer {
	return tr.do(string(s.Kind), func() error { return Apply(tr.table, s) })
}

// Table returns the transformed table
func (tr *Transformer) Table() *analytics.Table {
	return tr.table
}

// Err returns the first error encountered, if any
func (tr *Transformer) Err() error {
	return tr.err
}

// Applied returns the number of steps that completed
func (tr *Transformer) Applied() int {
	return tr.steps
}
