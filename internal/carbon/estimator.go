package carbon

// CarbonEstimator converts energy into a CO2 footprint.
type CarbonEstimator interface {
	// Estimate applies the emission factor of source to energyKWh.
	Estimate(energyKWh float64, source string, method Method) Estimate
}

// Estimator implements CarbonEstimator with the static EmissionFactors table.
type Estimator struct{}

// NewEstimator creates a new carbon estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate calculates the CO2 footprint of energyKWh produced by source.
//
// The calculation:
//  1. Factor (gCO2/kWh) = GetEmissionFactor(source), DefaultEmissionFactor if unknown
//  2. CO2 (g) = energyKWh × factor
//  3. CO2 (kg) = CO2 (g) / 1000
//
// Grams, kilograms and kWh are rounded to ResponseDecimals after the
// calculation; the factor is reported as is.
func (e *Estimator) Estimate(energyKWh float64, source string, method Method) Estimate {
	factor := GetEmissionFactor(source)
	grams := CalculateCO2Grams(energyKWh, factor)

	return Estimate{
		CO2Grams:        roundTo(grams, ResponseDecimals),
		CO2Kg:           roundTo(grams/GramsPerKilogram, ResponseDecimals),
		EnergyKWh:       roundTo(energyKWh, ResponseDecimals),
		CO2PerKWhFactor: factor,
		EnergySource:    source,
		Method:          method,
	}
}

// CalculateCO2Grams returns the unrounded emissions in gCO2 of energyKWh at an
// intensity of factor gCO2/kWh.
func CalculateCO2Grams(energyKWh, factor float64) float64 {
	return energyKWh * factor
}
