package loader

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.yaml.in/yaml/v3"
)

// recordKeys are tried in order when no records key is configured
var recordKeys = []string{"data", "observations"}

// parseJSON reads an array of objects, or an object holding that array under
// recordsKey
func parseJSON(body []byte, recordsKey string) (*frame, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return recordsFrame(doc, recordsKey)
}

// parseYAML accepts the same shapes as parseJSON
func parseYAML(body []byte, recordsKey string) (*frame, error) {
	var doc interface{}
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return recordsFrame(doc, recordsKey)
}

func recordsFrame(doc interface{}, recordsKey string) (*frame, error) {
	records, err := findRecords(doc, recordsKey)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var columns []string
	objects := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		obj, ok := rec.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("record %d is not an object", i)
		}
		objects[i] = obj
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	f := &frame{columns: columns, rows: make([][]interface{}, len(objects))}
	for i, obj := range objects {
		row := make([]interface{}, len(columns))
		for c, name := range columns {
			row[c] = obj[name]
		}
		f.rows[i] = row
	}
	return f, nil
}

func findRecords(doc interface{}, recordsKey string) ([]interface{}, error) {
	switch d := doc.(type) {
	case []interface{}:
		return d, nil
	case map[string]interface{}:
		keys := recordKeys
		if recordsKey != "" {
			keys = []string{recordsKey}
		}
		for _, k := range keys {
			if v, ok := d[k]; ok {
				records, ok := v.([]interface{})
				if !ok {
					return nil, fmt.Errorf("%q is not an array", k)
				}
				return records, nil
			}
		}
		return nil, fmt.Errorf("no records under %v", keys)
	default:
		return nil, fmt.Errorf("expected an array of records or an object")
	}
}
