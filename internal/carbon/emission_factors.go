package carbon

import "sort"

// EmissionFactors maps an electricity source to its carbon intensity in
// grams CO2 per kWh.
//
// The dashboard offers exactly these keys, so adding one is a user-visible change.
var EmissionFactors = map[string]float64{
	"mix_france": 32,  // French grid (nuclear heavy)
	"nuclear":    6,   // Nuclear
	"wind":       7,   // Onshore wind
	"solar":      41,  // Photovoltaic
	"hydro":      6,   // Hydroelectric
	"gas":        490, // Combined cycle gas
	"coal":       820, // Coal
	"mix_eu":     275, // EU-27 average mix
}

// DefaultEmissionFactor is used when a source is not listed in EmissionFactors.
// It equals the French grid mix, the dashboard's default selection.
const DefaultEmissionFactor = 32.0

// GetEmissionFactor returns the carbon intensity of source in gCO2/kWh. If the
// source is not listed in EmissionFactors, DefaultEmissionFactor is returned.
func GetEmissionFactor(source string) float64 {
	if factor, ok := EmissionFactors[source]; ok {
		return factor
	}
	return DefaultEmissionFactor
}

// EnergySource is one entry of the emission factor table.
type EnergySource struct {
	Source          string  `json:"energy_source"`
	CO2PerKWhFactor float64 `json:"co2_per_kwh"`
}

// EnergySources lists the table sorted by source name.
func EnergySources() []EnergySource {
	out := make([]EnergySource, 0, len(EmissionFactors))
	for source, factor := range EmissionFactors {
		out = append(out, EnergySource{Source: source, CO2PerKWhFactor: factor})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}
