package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/soltixdb/cyclix/internal/analytics/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat_MarshalNonFinite(t *testing.T) {
	row := VolatilityRow{Series: "real_gdp", Method: "hp", StdDev: Float(0.5), CV: Float(math.NaN())}
	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"series":"real_gdp","method":"hp","column":"","std_dev":0.5,"cv":null}`, string(data))

	data, err = json.Marshal([]Float{Float(math.Inf(1)), Float(math.Inf(-1)), 1e-12})
	require.NoError(t, err)
	assert.Equal(t, `[null,null,1e-12]`, string(data))
}

func TestFloat_UnmarshalNullIsMissing(t *testing.T) {
	var values []Float
	require.NoError(t, json.Unmarshal([]byte(`[1.5, null, -2]`), &values))
	require.Len(t, values, 3)
	assert.Equal(t, 1.5, float64(values[0]))
	assert.True(t, math.IsNaN(float64(values[1])))
	assert.False(t, values[1].IsFinite())
	assert.Equal(t, -2.0, float64(values[2]))

	assert.Error(t, json.Unmarshal([]byte(`["1.5"]`), &values))
}

func TestFloats_RoundTrip(t *testing.T) {
	assert.Nil(t, Floats(nil))
	in := []float64{1, math.NaN(), 3}
	out := Float64s(Floats(in))
	assert.Equal(t, 1.0, out[0])
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 3.0, out[2])
}

func TestTableData_Validate(t *testing.T) {
	valid := func() TableData {
		return TableData{
			Index: []string{"2000-01-01", "2000-04-01"},
			Columns: []ColumnData{
				{Name: "real_gdp", Values: []Float{1, 2}},
				{Name: "note", Text: []string{"a", "b"}},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*TableData)
		wantErr string
	}{
		{name: "valid", mutate: func(*TableData) {}},
		{name: "no index", mutate: func(d *TableData) { d.Index = nil }, wantErr: "index"},
		{name: "no columns", mutate: func(d *TableData) { d.Columns = nil }, wantErr: "at least one column"},
		{name: "unnamed column", mutate: func(d *TableData) { d.Columns[0].Name = "" }, wantErr: "name is required"},
		{name: "duplicate column", mutate: func(d *TableData) { d.Columns[1].Name = "real_gdp" }, wantErr: "duplicate"},
		{name: "short values", mutate: func(d *TableData) { d.Columns[0].Values = []Float{1} }, wantErr: "has 1 values"},
		{name: "short text", mutate: func(d *TableData) { d.Columns[1].Text = []string{"a"} }, wantErr: "has 1 values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAnalysisRequest_Validate(t *testing.T) {
	table := &TableData{Index: []string{"2000-01-01"}, Columns: []ColumnData{{Name: "x", Values: []Float{1}}}}
	gdp := &SourceRequest{Location: "https://example.com/gdp.csv"}

	tests := []struct {
		name    string
		req     AnalysisRequest
		wantErr bool
	}{
		{name: "inline table", req: AnalysisRequest{Table: table}},
		{name: "gdp source", req: AnalysisRequest{GDP: gdp}},
		{name: "gdp and government", req: AnalysisRequest{GDP: gdp, Government: &SourceRequest{Location: "gov.csv"}}},
		{name: "neither", req: AnalysisRequest{}, wantErr: true},
		{name: "both", req: AnalysisRequest{Table: table, GDP: gdp}, wantErr: true},
		{name: "government with table", req: AnalysisRequest{Table: table, Government: gdp}, wantErr: true},
		{name: "government without location", req: AnalysisRequest{GDP: gdp, Government: &SourceRequest{}}, wantErr: true},
		{name: "gdp without location", req: AnalysisRequest{GDP: &SourceRequest{}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequests_Validate(t *testing.T) {
	table := TableData{Index: []string{"2000-01-01"}, Columns: []ColumnData{{Name: "x", Values: []Float{1}}}}

	assert.NoError(t, (&TransformRequest{Table: table, Steps: []transform.Step{{Kind: transform.KindLog, Source: "x"}}}).Validate())
	assert.Error(t, (&TransformRequest{Table: table}).Validate())
	assert.Error(t, (&TransformRequest{Table: table, Steps: []transform.Step{{Kind: transform.KindLog}}}).Validate())
	assert.Error(t, (&TransformRequest{Table: table, Steps: make([]transform.Step, MaxTransformSteps+1)}).Validate())

	assert.NoError(t, (&VolatilityRequest{Table: table, Column: "x", Window: 4, DDOF: 1}).Validate())
	assert.Error(t, (&VolatilityRequest{Table: table}).Validate())
	assert.Error(t, (&VolatilityRequest{Table: table, Column: "x", Window: -1}).Validate())
	assert.Error(t, (&VolatilityRequest{Table: table, Column: "x", DDOF: -1}).Validate())

	assert.NoError(t, (&RegressionRequest{Table: table, Dependent: "y", Independent: []string{"x"}}).Validate())
	assert.Error(t, (&RegressionRequest{Table: table, Independent: []string{"x"}}).Validate())
	assert.Error(t, (&RegressionRequest{Table: table, Dependent: "y"}).Validate())
	assert.Error(t, (&RegressionRequest{Table: table, Dependent: "y", Independent: []string{"x"}, Confidence: 1.5}).Validate())

	assert.NoError(t, (&VARRequest{Table: table, Columns: []string{"x"}, Lags: 2, Steps: 8}).Validate())
	assert.Error(t, (&VARRequest{Table: table, Lags: 1}).Validate())
	assert.Error(t, (&VARRequest{Table: table, Columns: []string{"x"}}).Validate())
	assert.Error(t, (&VARRequest{Table: table, Columns: []string{"x"}, Lags: 1, Steps: MaxForecastSteps + 1}).Validate())
}
