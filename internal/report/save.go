package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soltixdb/cyclix/internal/pipeline"
)

// Artifact file names written by Save
const (
	TableFile       = "table.csv"
	VolatilityFile  = "volatility.txt"
	RegressionsFile = "regressions.txt"
	ResultFile      = "result.json"
)

// Save writes the run artifacts into dir, creating it if needed, and returns
// the written paths
func Save(dir string, res *pipeline.Result, precision int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	writers := []struct {
		name  string
		write func(*bytes.Buffer) error
	}{
		{TableFile, func(b *bytes.Buffer) error {
			if res.Table == nil {
				return fmt.Errorf("result has no table")
			}
			return WriteCSV(b, res.Table, precision)
		}},
		{VolatilityFile, func(b *bytes.Buffer) error { return WriteVolatility(b, res.Volatility, precision) }},
		{RegressionsFile, func(b *bytes.Buffer) error { return WriteRegressions(b, res.Regressions, precision) }},
		{ResultFile, func(b *bytes.Buffer) error { return WriteJSON(b, NewDocument(res, false)) }},
	}

	paths := make([]string, 0, len(writers))
	for _, w := range writers {
		var buf bytes.Buffer
		if err := w.write(&buf); err != nil {
			return paths, fmt.Errorf("render %s: %w", w.name, err)
		}
		path := filepath.Join(dir, w.name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
