package carbon

import "strconv"

// roundTo rounds f to the given number of decimals, half-to-even on the exact
// binary value.
func roundTo(f float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', decimals, 64), 64)
	if err != nil {
		return f
	}
	return r
}
