package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// parseCSV reads a delimited file whose first row is the header
func parseCSV(body []byte, delimiter rune) (*frame, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	f := &frame{columns: make([]string, len(header))}
	for i, h := range header {
		f.columns[i] = strings.TrimSpace(h)
	}

	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("line %d: %d fields for %d columns", line, len(record), len(header))
		}
		row := make([]interface{}, len(record))
		for i, v := range record {
			row[i] = v
		}
		f.rows = append(f.rows, row)
	}
	return f, nil
}
