package carbon

// Method records where the energy figure of an Estimate came from.
type Method string

const (
	// MethodRemotePrediction means the scoring deployment predicted the energy.
	MethodRemotePrediction Method = "remote_prediction"

	// MethodStatisticalFallback means the energy is a historical average because
	// no remote prediction was available.
	MethodStatisticalFallback Method = "statistical_fallback"
)

// Estimate is the CO2 footprint of one prompt.
type Estimate struct {
	// CO2Grams is the footprint in gCO2, rounded to ResponseDecimals.
	CO2Grams float64 `json:"co2_grams"`

	// CO2Kg is the footprint in kgCO2, rounded to ResponseDecimals.
	CO2Kg float64 `json:"co2_kg"`

	// EnergyKWh is the energy the footprint was computed from, rounded to ResponseDecimals.
	EnergyKWh float64 `json:"energy_kwh"`

	// CO2PerKWhFactor is the emission factor applied, in gCO2/kWh.
	CO2PerKWhFactor float64 `json:"co2_per_kwh"`

	// EnergySource is the requested source, echoed as given even when unknown.
	EnergySource string `json:"energy_source"`

	// Method tells remote predictions apart from statistical fallbacks.
	Method Method `json:"method"`
}
