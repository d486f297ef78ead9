package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Measurement is an optional numeric CSV cell. Empty and NaN cells are not Valid.
type Measurement struct {
	Value float64
	Valid bool
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (m *Measurement) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*m = Measurement{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) {
		*m = Measurement{}
		return nil
	}
	*m = Measurement{Value: v, Valid: true}
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller. It also keeps gocsv from
// treating Measurement as a nested struct of columns.
func (m Measurement) MarshalCSV() (string, error) {
	if !m.Valid {
		return "", nil
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64), nil
}

// mean returns the arithmetic mean of the valid values and whether there were any.
func mean(values []Measurement) (float64, bool) {
	var sum float64
	var n int
	for _, v := range values {
		if v.Valid {
			sum += v.Value
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// roundTo rounds f to the given number of decimals, half-to-even on the exact
// binary value.
func roundTo(f float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', decimals, 64), 64)
	if err != nil {
		return f
	}
	return r
}
