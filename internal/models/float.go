package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Float is a float64 on the wire. NaN and ±Inf have no JSON form, so they
// are written as null; null reads back as NaN, the missing marker.
type Float float64

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	*f = Float(v)
	return nil
}

// IsFinite reports whether f is neither missing nor infinite
func (f Float) IsFinite() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Floats converts a float64 slice for encoding
func Floats(values []float64) []Float {
	if values == nil {
		return nil
	}
	out := make([]Float, len(values))
	for i, v := range values {
		out[i] = Float(v)
	}
	return out
}

// Float64s converts decoded values back to float64
func Float64s(values []Float) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
