package analytics

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// NotAvailable is the wire form of an undefined aggregate.
const NotAvailable = "N/A"

// Value is a number or the "not available" sentinel.  The zero Value is the
// sentinel.  The sentinel is distinct from zero and ranks below every number.
type Value struct {
	v  float64
	ok bool
}

// Num wraps f.  NaN and infinities become the sentinel.
func Num(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{v: f, ok: true}
}

// NA returns the sentinel.
func NA() Value { return Value{} }

// Float returns the number and whether it is defined.
func (x Value) Float() (float64, bool) { return x.v, x.ok }

// IsNA reports whether x is the sentinel.
func (x Value) IsNA() bool { return !x.ok }

// rankKey orders the sentinel as negative infinity.
func (x Value) rankKey() float64 {
	if !x.ok {
		return math.Inf(-1)
	}
	return x.v
}

// Round1 rounds to one decimal place; the sentinel is preserved.
func (x Value) Round1() Value {
	if !x.ok {
		return x
	}
	return Value{v: round1(x.v), ok: true}
}

func (x Value) String() string {
	if !x.ok {
		return NotAvailable
	}
	return strconv.FormatFloat(x.v, 'f', -1, 64)
}

// MarshalJSON encodes numbers as JSON numbers and the sentinel as "N/A".
func (x Value) MarshalJSON() ([]byte, error) {
	if !x.ok {
		return []byte(`"` + NotAvailable + `"`), nil
	}
	return []byte(strconv.FormatFloat(x.v, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number, "N/A" or null.
func (x *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*x = Value{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == NotAvailable || s == "" {
			*x = Value{}
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*x = Num(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*x = Num(f)
	return nil
}

// MarshalYAML mirrors MarshalJSON for the CLI's yaml output.
func (x Value) MarshalYAML() (interface{}, error) {
	if !x.ok {
		return NotAvailable, nil
	}
	return x.v, nil
}

// Series is a quarter-indexed sequence of values; missing points are NA.
type Series []Value

// Floats returns the series as float64 with NaN for missing points.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s))
	for i, x := range s {
		if x.ok {
			out[i] = x.v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// round1 rounds the exact binary value to one decimal, ties to even, so 2.25
// gives 2.2 and 0.15 (stored below the half) gives 0.1.
func round1(f float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 1, 64), 64)
	return r
}

// mean returns the mean of the defined values in s, or NA if none.
func mean(s Series) Value {
	var sum float64
	var n int
	for _, x := range s {
		if x.ok {
			sum += x.v
			n++
		}
	}
	if n == 0 {
		return NA()
	}
	return Num(sum / float64(n))
}

//Personal.AI order the ending
