package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soltixdb/cyclix/internal/logging"
	"github.com/stretchr/testify/require"
)

const gdpCSV = `date,real_gdp,gov_prod,note
1947-04-01,2033.061,142.3,
1947-01-01,2034.450,140.1,first
1947-07-01,2029.024,NA,
1947-10-01,2051.000,139.0,x
`

const fredJSON = `{
  "realtime_start": "2024-01-01",
  "observations": [
    {"date": "1947-01-01", "value": "2034.450"},
    {"date": "1947-04-01", "value": "2033.061"},
    {"date": "1947-07-01", "value": "."}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestLoader(opts ...Option) *Loader {
	return New(append([]Option{WithLogger(logging.NewNop())}, opts...)...)
}
