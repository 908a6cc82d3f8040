package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric catalog field that decodes leniently.
// A missing field stays 0. null, booleans, objects and strings that are not
// numbers decode to NaN instead of failing the whole payload.
type Number float64

// Float64 returns the raw value, which may be NaN.
func (n Number) Float64() float64 {
	return float64(n)
}

// IsValid reports whether the value is a finite number.
func (n Number) IsValid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number(math.NaN())
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = Number(parsed)
			return nil
		}
	}

	*n = Number(math.NaN())
	return nil
}

// MarshalJSON writes invalid values as null so encoding never fails on NaN.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.IsValid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(n))
}
