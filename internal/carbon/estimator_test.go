package carbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCO2Grams(t *testing.T) {
	tests := []struct {
		name      string
		energyKWh float64
		factor    float64
		want      float64
	}{
		{name: "one kWh of coal", energyKWh: 1, factor: 820, want: 820},
		{name: "zero energy", energyKWh: 0, factor: 490, want: 0},
		{name: "half kWh of eu mix", energyKWh: 0.5, factor: 275, want: 137.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateCO2Grams(tt.energyKWh, tt.factor), 1e-12)
		})
	}
}

func TestEstimator_Estimate(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		name       string
		energyKWh  float64
		source     string
		method     Method
		wantGrams  float64
		wantKg     float64
		wantKWh    float64
		wantFactor float64
	}{
		{
			name:       "coal one kWh",
			energyKWh:  1.0,
			source:     "coal",
			method:     MethodRemotePrediction,
			wantGrams:  820.0,
			wantKg:     0.82,
			wantKWh:    1.0,
			wantFactor: 820,
		},
		{
			name:       "sub milliwatt-hour on wind keeps precision",
			energyKWh:  0.000123,
			source:     "wind",
			method:     MethodRemotePrediction,
			wantGrams:  0.000861,
			wantKg:     0.000001,
			wantKWh:    0.000123,
			wantFactor: 7,
		},
		{
			name:       "unknown source uses default factor",
			energyKWh:  0.002,
			source:     "geothermal",
			method:     MethodStatisticalFallback,
			wantGrams:  0.064,
			wantKg:     0.000064,
			wantKWh:    0.002,
			wantFactor: DefaultEmissionFactor,
		},
		{
			name:       "energy rounded to six decimals",
			energyKWh:  0.0000123456789,
			source:     "gas",
			method:     MethodStatisticalFallback,
			wantGrams:  0.006049,
			wantKg:     0.000006,
			wantKWh:    0.000012,
			wantFactor: 490,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Estimate(tt.energyKWh, tt.source, tt.method)

			assert.Equal(t, tt.wantGrams, got.CO2Grams)
			assert.Equal(t, tt.wantKg, got.CO2Kg)
			assert.Equal(t, tt.wantKWh, got.EnergyKWh)
			assert.Equal(t, tt.wantFactor, got.CO2PerKWhFactor)
			assert.Equal(t, tt.source, got.EnergySource)
			assert.Equal(t, tt.method, got.Method)
		})
	}
}

func TestEstimator_ImplementsInterface(t *testing.T) {
	var _ CarbonEstimator = NewEstimator()
}
