package models

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FlexFloat decodes a JSON number or a numeric string. Anything else
// (null, objects, garbage) leaves it invalid instead of failing the decode,
// since upstream services disagree on coordinate encodings.
type FlexFloat struct {
	Value float64
	Valid bool
}

func Float(v float64) FlexFloat {
	return FlexFloat{Value: v, Valid: true}
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f.Value, f.Valid = v, true
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	f.Value, f.Valid = v, true
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Finite() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

// Finite reports whether the value is set and usable as a coordinate.
func (f FlexFloat) Finite() bool {
	return f.Valid && !math.IsNaN(f.Value) && !math.IsInf(f.Value, 0)
}

// FlexString decodes strings and numbers alike; other JSON kinds decode to "".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	*s = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		*s = FlexString(v)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*s = FlexString(data)
	}
	return nil
}

func (s FlexString) String() string {
	return string(s)
}
