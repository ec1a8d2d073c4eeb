// Package analytics provides the time-indexed table shared by the transform,
// volatility and regression packages, together with their error kinds.
package analytics

import (
	"math"
	"sort"
	"time"
)

// Missing returns the missing-value marker used in numeric columns
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing-value marker
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Table is a column-oriented set of series sharing one strictly increasing
// time index. Numeric columns hold NaN where a value is missing.
type Table struct {
	index   []time.Time
	order   []string
	numeric map[string][]float64
	text    map[string][]string
}

// NewTable creates an empty table over the given periods
func NewTable(index []time.Time) (*Table, error) {
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return nil, NewOpError("new_table", "", ErrInvalidIndex,
				"period %s at row %d does not follow %s", index[i].Format("2006-01-02"), i, index[i-1].Format("2006-01-02"))
		}
	}

	idx := make([]time.Time, len(index))
	copy(idx, index)

	return &Table{
		index:   idx,
		numeric: make(map[string][]float64),
		text:    make(map[string][]string),
	}, nil
}

// FromRecords builds a table from unsorted rows. Rows are sorted by period and
// each column is permuted accordingly; duplicate periods are rejected.
func FromRecords(index []time.Time, columns map[string][]float64) (*Table, error) {
	perm := make([]int, len(index))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return index[perm[a]].Before(index[perm[b]])
	})

	sorted := make([]time.Time, len(index))
	for i, p := range perm {
		sorted[i] = index[p]
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Equal(sorted[i-1]) {
			return nil, NewOpError("from_records", "", ErrInvalidIndex,
				"duplicate period %s", sorted[i].Format("2006-01-02"))
		}
	}

	t, err := NewTable(sorted)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := columns[name]
		if len(values) != len(index) {
			return nil, NewOpError("from_records", name, ErrLengthMismatch,
				"have %d values for %d periods", len(values), len(index))
		}
		permuted := make([]float64, len(values))
		for i, p := range perm {
			permuted[i] = values[p]
		}
		t.order = append(t.order, name)
		t.numeric[name] = permuted
	}

	return t, nil
}

// Len returns the number of periods
func (t *Table) Len() int {
	return len(t.index)
}

// Index returns a copy of the period index
func (t *Table) Index() []time.Time {
	idx := make([]time.Time, len(t.index))
	copy(idx, t.index)
	return idx
}

// Period returns the period at row i
func (t *Table) Period(i int) time.Time {
	return t.index[i]
}

// Columns returns column names in insertion order
func (t *Table) Columns() []string {
	names := make([]string, len(t.order))
	copy(names, t.order)
	return names
}

// Has reports whether a column (numeric or text) exists
func (t *Table) Has(name string) bool {
	_, isNum := t.numeric[name]
	_, isText := t.text[name]
	return isNum || isText
}

// IsNumeric reports whether name is a numeric column
func (t *Table) IsNumeric(name string) bool {
	_, ok := t.numeric[name]
	return ok
}

// Column returns a copy of a numeric column
func (t *Table) Column(name string) ([]float64, error) {
	values, err := t.lookup("column", name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out, nil
}

// lookup returns the backing slice of a numeric column without copying
func (t *Table) lookup(op, name string) ([]float64, error) {
	if values, ok := t.numeric[name]; ok {
		return values, nil
	}
	if _, ok := t.text[name]; ok {
		return nil, NewOpError(op, name, ErrNonNumeric, "column holds text values")
	}
	return nil, NewOpError(op, name, ErrMissingColumn, "")
}

// SetColumn adds a numeric column, or overwrites it if it already exists
func (t *Table) SetColumn(name string, values []float64) error {
	if len(values) != len(t.index) {
		return NewOpError("set_column", name, ErrLengthMismatch,
			"have %d values for %d periods", len(values), len(t.index))
	}
	if !t.Has(name) {
		t.order = append(t.order, name)
	}
	delete(t.text, name)

	stored := make([]float64, len(values))
	copy(stored, values)
	t.numeric[name] = stored
	return nil
}

// SetText adds a text column. Text columns are carried for inspection and
// export only; numeric accessors reject them.
func (t *Table) SetText(name string, values []string) error {
	if len(values) != len(t.index) {
		return NewOpError("set_text", name, ErrLengthMismatch,
			"have %d values for %d periods", len(values), len(t.index))
	}
	if !t.Has(name) {
		t.order = append(t.order, name)
	}
	delete(t.numeric, name)

	stored := make([]string, len(values))
	copy(stored, values)
	t.text[name] = stored
	return nil
}

// Text returns a copy of a text column
func (t *Table) Text(name string) ([]string, bool) {
	values, ok := t.text[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(values))
	copy(out, values)
	return out, true
}

// Drop removes a column if present
func (t *Table) Drop(name string) {
	if !t.Has(name) {
		return
	}
	delete(t.numeric, name)
	delete(t.text, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	c := &Table{
		index:   t.Index(),
		order:   t.Columns(),
		numeric: make(map[string][]float64, len(t.numeric)),
		text:    make(map[string][]string, len(t.text)),
	}
	for name, values := range t.numeric {
		c.numeric[name] = append([]float64(nil), values...)
	}
	for name, values := range t.text {
		c.text[name] = append([]string(nil), values...)
	}
	return c
}

// Valid returns the non-missing values of a numeric column in period order
func (t *Table) Valid(name string) ([]float64, error) {
	values, err := t.lookup("valid", name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !IsMissing(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Paired returns row-aligned values of two columns, dropping every row where
// either value is missing
func (t *Table) Paired(a, b string) (x, y []float64, err error) {
	av, err := t.lookup("paired", a)
	if err != nil {
		return nil, nil, err
	}
	bv, err := t.lookup("paired", b)
	if err != nil {
		return nil, nil, err
	}

	x = make([]float64, 0, len(av))
	y = make([]float64, 0, len(bv))
	for i := range av {
		if IsMissing(av[i]) || IsMissing(bv[i]) {
			continue
		}
		x = append(x, av[i])
		y = append(y, bv[i])
	}
	return x, y, nil
}

// Subtract sets dest = a - b elementwise. A missing operand gives a missing result.
func (t *Table) Subtract(dest, a, b string) error {
	av, err := t.lookup("subtract", a)
	if err != nil {
		return err
	}
	bv, err := t.lookup("subtract", b)
	if err != nil {
		return err
	}

	out := make([]float64, len(av))
	for i := range av {
		out[i] = av[i] - bv[i]
	}
	return t.SetColumn(dest, out)
}

// Window returns a sub-table restricted to periods in [start, end].
// A zero start or end leaves that side open.
func (t *Table) Window(start, end time.Time) *Table {
	lo, hi := 0, len(t.index)
	if !start.IsZero() {
		lo = sort.Search(len(t.index), func(i int) bool { return !t.index[i].Before(start) })
	}
	if !end.IsZero() {
		hi = sort.Search(len(t.index), func(i int) bool { return t.index[i].After(end) })
	}
	if hi < lo {
		hi = lo
	}

	w := &Table{
		index:   append([]time.Time(nil), t.index[lo:hi]...),
		order:   t.Columns(),
		numeric: make(map[string][]float64, len(t.numeric)),
		text:    make(map[string][]string, len(t.text)),
	}
	for name, values := range t.numeric {
		w.numeric[name] = append([]float64(nil), values[lo:hi]...)
	}
	for name, values := range t.text {
		w.text[name] = append([]string(nil), values[lo:hi]...)
	}
	return w
}

// Join returns the inner join of two tables on their periods. Columns of
// other that already exist in t are skipped.
func (t *Table) Join(other *Table) *Table {
	rows := make(map[int64]int, other.Len())
	for i, p := range other.index {
		rows[p.UnixNano()] = i
	}

	var left, right []int
	var index []time.Time
	for i, p := range t.index {
		if j, ok := rows[p.UnixNano()]; ok {
			left = append(left, i)
			right = append(right, j)
			index = append(index, p)
		}
	}

	j := &Table{
		index:   index,
		numeric: make(map[string][]float64),
		text:    make(map[string][]string),
	}
	pick := func(src *Table, rows []int) {
		for _, name := range src.order {
			if j.Has(name) {
				continue
			}
			j.order = append(j.order, name)
			if values, ok := src.numeric[name]; ok {
				out := make([]float64, len(rows))
				for k, r := range rows {
					out[k] = values[r]
				}
				j.numeric[name] = out
				continue
			}
			values := src.text[name]
			out := make([]string, len(rows))
			for k, r := range rows {
				out[k] = values[r]
			}
			j.text[name] = out
		}
	}
	pick(t, left)
	pick(other, right)
	return j
}

// IsQuarterly reports whether consecutive periods are exactly one quarter apart
func (t *Table) IsQuarterly() bool {
	for i := 1; i < len(t.index); i++ {
		if !t.index[i-1].AddDate(0, 3, 0).Equal(t.index[i]) {
			return false
		}
	}
	return true
}

// ValidSpan returns the half-open row range [start, end) of the contiguous
// non-missing span of values. Missing rows before and after the span are
// allowed; a missing row inside it is a domain error.
func ValidSpan(values []float64) (start, end int, err error) {
	start = 0
	for start < len(values) && IsMissing(values[start]) {
		start++
	}
	if start == len(values) {
		return 0, 0, NewOpError("valid_span", "", ErrInsufficientData, "no non-missing values")
	}

	end = len(values)
	for end > start && IsMissing(values[end-1]) {
		end--
	}

	for i := start; i < end; i++ {
		if IsMissing(values[i]) {
			return 0, 0, NewOpError("valid_span", "", ErrDomain, "missing value at row %d inside the series", i)
		}
	}
	return start, end, nil
}

// QuarterlyIndex returns n quarterly periods starting at start
func QuarterlyIndex(start time.Time, n int) []time.Time {
	idx := make([]time.Time, n)
	for i := range idx {
		idx[i] = start.AddDate(0, 3*i, 0)
	}
	return idx
}
