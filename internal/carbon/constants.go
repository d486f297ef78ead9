// Package carbon converts inference energy into a CO2 footprint using static
// emission factors per electricity source.
package carbon

const (
	// GramsPerKilogram converts gCO2 into kgCO2.
	GramsPerKilogram = 1000.0

	// ResponseDecimals is the precision of grams, kilograms and kWh in an Estimate.
	ResponseDecimals = 6
)
