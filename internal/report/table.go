package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/soltixdb/cyclix/internal/analytics"
	"github.com/soltixdb/cyclix/internal/loader"
	"github.com/soltixdb/cyclix/internal/models"
)

// NewTableData converts a table to its wire form
func NewTableData(t *analytics.Table) models.TableData {
	d := models.TableData{
		Index:   make([]string, t.Len()),
		Columns: make([]models.ColumnData, 0, len(t.Columns())),
	}
	for i, p := range t.Index() {
		d.Index[i] = p.Format(models.PeriodLayout)
	}
	for _, name := range t.Columns() {
		if text, ok := t.Text(name); ok {
			d.Columns = append(d.Columns, models.ColumnData{Name: name, Text: text})
			continue
		}
		values, _ := t.Column(name)
		d.Columns = append(d.Columns, models.ColumnData{Name: name, Values: models.Floats(values)})
	}
	return d
}

// FromTableData builds a table from its wire form. The index must already be
// strictly increasing.
func FromTableData(d models.TableData) (*analytics.Table, error) {
	index, err := parseIndex(d.Index, d.DateLayout)
	if err != nil {
		return nil, err
	}
	t, err := analytics.NewTable(index)
	if err != nil {
		return nil, err
	}
	for _, c := range d.Columns {
		if c.Text != nil {
			err = t.SetText(c.Name, c.Text)
		} else {
			err = t.SetColumn(c.Name, models.Float64s(c.Values))
		}
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parseIndex(index []string, layout string) ([]time.Time, error) {
	out := make([]time.Time, len(index))
	for i, s := range index {
		p, err := loader.ParsePeriod(s, layout)
		if err != nil {
			return nil, analytics.NewOpError("table", "", analytics.ErrInvalidIndex, "index[%d]: %v", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// WriteCSV writes the table with a leading date column. Columns keep table
// order, numbers use precision decimal places and missing values are empty.
func WriteCSV(w io.Writer, t *analytics.Table, precision int) error {
	cw := csv.NewWriter(w)
	columns := t.Columns()

	header := append([]string{"date"}, columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	numeric := make(map[string][]float64, len(columns))
	text := make(map[string][]string)
	for _, name := range columns {
		if values, ok := t.Text(name); ok {
			text[name] = values
			continue
		}
		values, err := t.Column(name)
		if err != nil {
			return err
		}
		numeric[name] = values
	}

	record := make([]string, len(header))
	for i, p := range t.Index() {
		record[0] = p.Format(models.PeriodLayout)
		for j, name := range columns {
			if values, ok := text[name]; ok {
				record[j+1] = values[i]
				continue
			}
			record[j+1] = formatFloat(numeric[name][i], precision)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64, precision int) string {
	if analytics.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}
