package models

import "fmt"

// PeriodLayout formats table periods on the wire
const PeriodLayout = "2006-01-02"

// ColumnData is one named table column. Numeric columns use Values, text
// columns carried from a source use Text.
type ColumnData struct {
	Name   string   `json:"name"`
	Values []Float  `json:"values,omitempty"`
	Text   []string `json:"text,omitempty"`
}

// TableData is the wire form of an analysis table. Columns keep table order.
type TableData struct {
	Index      []string     `json:"index"`
	DateLayout string       `json:"date_layout,omitempty"` // Go layout for Index; common layouts and 2006Q1 are tried when empty
	Columns    []ColumnData `json:"columns"`
}

// Validate checks the table shape
func (t *TableData) Validate() error {
	if len(t.Index) == 0 {
		return fmt.Errorf("table index is required")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table needs at least one column")
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return fmt.Errorf("column name is required")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if c.Text != nil {
			if len(c.Text) != len(t.Index) {
				return fmt.Errorf("column %q has %d values, index has %d", c.Name, len(c.Text), len(t.Index))
			}
			continue
		}
		if len(c.Values) != len(t.Index) {
			return fmt.Errorf("column %q has %d values, index has %d", c.Name, len(c.Values), len(t.Index))
		}
	}
	return nil
}
