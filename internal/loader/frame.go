package loader

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/soltixdb/cyclix/internal/analytics"
)

// frame is a parsed source before typing: named columns of raw cells. Cells
// are strings from CSV or decoded JSON/YAML scalars.
type frame struct {
	columns []string
	rows    [][]interface{}
}

// missingTokens are the cell spellings read as a missing value
var missingTokens = map[string]bool{
	"":     true,
	".":    true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// dateLayouts are tried in order when no layout is configured
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"2006-01",
}

// table types the frame: the date column becomes the index, columns whose
// cells are all numeric or missing become numeric columns, the rest text.
func (f *frame) table(p Params) (*analytics.Table, error) {
	dateCol := p.DateColumn
	if dateCol == "" {
		dateCol = "date"
	}
	dateIdx := -1
	for i, c := range f.columns {
		if strings.EqualFold(c, dateCol) {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("date column %q not found", dateCol)
	}
	if len(f.rows) == 0 {
		return nil, fmt.Errorf("no rows")
	}

	type dated struct {
		at  time.Time
		row int
	}
	order := make([]dated, len(f.rows))
	for i, row := range f.rows {
		at, err := parseDate(cellAt(row, dateIdx), p.DateLayout)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		order[i] = dated{at: at, row: i}
	}
	sort.SliceStable(order, func(a, b int) bool { return order[a].at.Before(order[b].at) })

	index := make([]time.Time, len(order))
	for i, d := range order {
		if i > 0 && d.at.Equal(order[i-1].at) {
			return nil, fmt.Errorf("duplicate period %s", d.at.Format("2006-01-02"))
		}
		index[i] = d.at
	}

	table, err := analytics.NewTable(index)
	if err != nil {
		return nil, err
	}

	rename := make(map[string]string, len(p.Rename))
	for from, to := range p.Rename {
		rename[strings.ToLower(from)] = to
	}

	for c, name := range f.columns {
		if c == dateIdx {
			continue
		}
		if to, ok := rename[strings.ToLower(name)]; ok {
			name = to
		}
		if table.Has(name) {
			return nil, fmt.Errorf("duplicate column %q", name)
		}

		numbers := make([]float64, len(order))
		texts := make([]string, len(order))
		numeric := true
		for i, d := range order {
			v, text, kind := parseCell(cellAt(f.rows[d.row], c), p.Thousands)
			numbers[i], texts[i] = v, text
			if kind == cellText {
				numeric = false
			}
		}
		if numeric {
			err = table.SetColumn(name, numbers)
		} else {
			err = table.SetText(name, texts)
		}
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}

func cellAt(row []interface{}, i int) interface{} {
	if i < len(row) {
		return row[i]
	}
	return nil
}

type cellKind int

const (
	cellMissing cellKind = iota
	cellNumber
	cellText
)

// parseCell classifies one raw cell and returns its numeric and text forms.
// thousands, when non-zero, is removed from numeric strings before parsing.
func parseCell(v interface{}, thousands rune) (float64, string, cellKind) {
	switch x := v.(type) {
	case nil:
		return analytics.Missing(), "", cellMissing
	case float64:
		if math.IsNaN(x) {
			return analytics.Missing(), "", cellMissing
		}
		return x, strconv.FormatFloat(x, 'g', -1, 64), cellNumber
	case int:
		return float64(x), strconv.Itoa(x), cellNumber
	case int64:
		return float64(x), strconv.FormatInt(x, 10), cellNumber
	case uint64:
		return float64(x), strconv.FormatUint(x, 10), cellNumber
	case bool:
		return analytics.Missing(), strconv.FormatBool(x), cellText
	case time.Time:
		return analytics.Missing(), x.Format(time.RFC3339), cellText
	case string:
		s := strings.TrimSpace(x)
		if missingTokens[strings.ToLower(s)] {
			return analytics.Missing(), "", cellMissing
		}
		num := s
		if thousands != 0 {
			num = strings.ReplaceAll(s, string(thousands), "")
		}
		if f, err := strconv.ParseFloat(num, 64); err == nil && !math.IsInf(f, 0) {
			return f, s, cellNumber
		}
		return analytics.Missing(), s, cellText
	default:
		return analytics.Missing(), fmt.Sprint(x), cellText
	}
}

// ParsePeriod reads a period string with layout, or with the common layouts
// and quarter notation when layout is empty
func ParsePeriod(s, layout string) (time.Time, error) {
	return parseDate(s, layout)
}

// parseDate reads a period. Quarter notation (2006Q1, 2006-Q1) maps to the
// first day of the quarter.
func parseDate(v interface{}, layout string) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		s := strings.TrimSpace(x)
		if layout != "" {
			t, err := time.Parse(layout, s)
			if err != nil {
				return time.Time{}, fmt.Errorf("date %q does not match layout %q", s, layout)
			}
			return t, nil
		}
		if t, ok := parseQuarter(s); ok {
			return t, nil
		}
		for _, l := range dateLayouts {
			if t, err := time.Parse(l, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	case nil:
		return time.Time{}, fmt.Errorf("missing date")
	default:
		return time.Time{}, fmt.Errorf("unrecognised date %v", v)
	}
}

func parseQuarter(s string) (time.Time, bool) {
	u := strings.ToUpper(s)
	i := strings.Index(u, "Q")
	if i < 4 || i == len(u)-1 {
		return time.Time{}, false
	}
	yearPart := strings.TrimSuffix(u[:i], "-")
	if len(yearPart) != 4 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return time.Time{}, false
	}
	q, err := strconv.Atoi(u[i+1:])
	if err != nil || q < 1 || q > 4 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(3*(q-1)+1), 1, 0, 0, 0, 0, time.UTC), true
}
