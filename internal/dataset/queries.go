package dataset

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Timeline series, in output order.
var timelineSeries = []struct {
	model, platform, key string
}{
	{"codellama_70b", "workstation", "CodeLlama_WS"},
	{"gemma_2b", "laptop2", "Gemma2B_L1"},
	{"alpaca_llama3_70b", "server", "Llama3_70B_S"},
}

const (
	// TimelineSamples is the number of rows returned by Timeline.
	TimelineSamples = 6

	// EfficiencyPointsPerModel caps the points Efficiency returns per model.
	EfficiencyPointsPerModel = 30

	nanosPerSecond = 1e9
	whPerKWh       = 1000
)

// efficiencyModels are the display names Efficiency keeps.
var efficiencyModels = map[string]bool{
	"Gemma 2B": true,
	"Gemma 7B": true,
}

// Summary describes the loaded data for the health endpoint.
type Summary struct {
	TotalRows int      `json:"total_rows"`
	Models    []string `json:"models"`
	Platforms []string `json:"platforms"`
}

// ModelEnergy is the mean total energy (kWh) of one model per platform.
type ModelEnergy struct {
	Model       string  `json:"model"`
	Workstation float64 `json:"Workstation"`
	Server      float64 `json:"Server"`
	Laptop1     float64 `json:"Laptop1"`
	Laptop2     float64 `json:"Laptop2"`
}

// TimelinePoint is one sample of the three timeline series (kWh).
type TimelinePoint struct {
	Time      string  `json:"time"`
	CodeLlama float64 `json:"CodeLlama_WS"`
	Gemma2B   float64 `json:"Gemma2B_L1"`
	Llama370B float64 `json:"Llama3_70B_S"`
}

// EfficiencyPoint relates response length to energy for one measurement.
type EfficiencyPoint struct {
	ResponseLength int     `json:"responseLength"`
	Energy         float64 `json:"energy"`
	Model          string  `json:"model"`
	Duration       float64 `json:"duration"`
}

// GPUCPUShare compares GPU and CPU energy (Wh) of one model.
type GPUCPUShare struct {
	Model string  `json:"model"`
	GPU   float64 `json:"GPU"`
	CPU   float64 `json:"CPU"`
}

// filter returns the rows matching model and, when non-empty, platform.
func (d *Dataset) filter(model, platform string) []Measurement {
	var out []Measurement
	for _, r := range d.records {
		if r.Model == model && (platform == "" || r.Platform == platform) {
			out = append(out, r.EnergyTotal)
		}
	}
	return out
}

// AverageEnergy returns the mean total energy in kWh of the rows for model and
// platform. Without such rows it widens to every row of model, then to the
// whole dataset. Rows without an energy value are ignored; if no value is
// left the result is 0.
func (d *Dataset) AverageEnergy(model, platform string) float64 {
	rows := d.filter(model, platform)
	if len(rows) == 0 {
		rows = d.filter(model, "")
	}
	if len(rows) == 0 {
		rows = make([]Measurement, len(d.records))
		for i, r := range d.records {
			rows[i] = r.EnergyTotal
		}
	}
	avg, _ := mean(rows)
	return avg
}

// Models returns the distinct model identifiers, sorted.
func (d *Dataset) Models() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range d.records {
		if !seen[r.Model] {
			seen[r.Model] = true
			out = append(out, r.Model)
		}
	}
	sort.Strings(out)
	return out
}

// Platforms returns the distinct platforms measured for model, sorted.
// An unknown model yields an empty, non-nil slice.
func (d *Dataset) Platforms(model string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range d.records {
		if r.Model == model && !seen[r.Platform] {
			seen[r.Platform] = true
			out = append(out, r.Platform)
		}
	}
	sort.Strings(out)
	return out
}

// Summary lists row count, models and platforms in first-seen order.
func (d *Dataset) Summary() Summary {
	s := Summary{TotalRows: len(d.records), Models: []string{}, Platforms: []string{}}
	models := make(map[string]bool)
	platforms := make(map[string]bool)
	for _, r := range d.records {
		if !models[r.Model] {
			models[r.Model] = true
			s.Models = append(s.Models, r.Model)
		}
		if !platforms[r.Platform] {
			platforms[r.Platform] = true
			s.Platforms = append(s.Platforms, r.Platform)
		}
	}
	return s
}

// EnergyByModel pivots the mean total energy per (model, platform) into one
// row per model, sorted by model. Platforms are matched by name: any platform
// containing "workstation", "server", "laptop1" or "laptop2" fills that
// column. Missing cells are 0.
func (d *Dataset) EnergyByModel() ([]ModelEnergy, error) {
	if !d.HasColumn(ColumnEnergyTotal) {
		return nil, fmt.Errorf("%w %s", ErrMissingColumn, ColumnEnergyTotal)
	}

	type key struct{ model, platform string }
	groups := make(map[key][]Measurement)
	platformSet := make(map[string]bool)
	for _, r := range d.records {
		k := key{r.Model, r.Platform}
		groups[k] = append(groups[k], r.EnergyTotal)
		platformSet[r.Platform] = true
	}

	platforms := make([]string, 0, len(platformSet))
	for p := range platformSet {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	out := []ModelEnergy{}
	for _, model := range d.Models() {
		row := ModelEnergy{Model: model}
		for _, p := range platforms {
			var value float64
			if rows, ok := groups[key{model, p}]; ok {
				value, _ = mean(rows)
			}
			value = roundTo(value, 6)

			lower := strings.ToLower(p)
			switch {
			case strings.Contains(lower, "workstation"):
				row.Workstation = value
			case strings.Contains(lower, "server"):
				row.Server = value
			case strings.Contains(lower, "laptop1"):
				row.Laptop1 = value
			case strings.Contains(lower, "laptop2"):
				row.Laptop2 = value
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// Timeline returns TimelineSamples points; the i-th point holds the total
// energy of the i-th row of each series, or 0 past the end of a series.
func (d *Dataset) Timeline() []TimelinePoint {
	series := make([][]Measurement, len(timelineSeries))
	for i, s := range timelineSeries {
		series[i] = d.filter(s.model, s.platform)
	}

	sample := func(rows []Measurement, i int) float64 {
		if i >= len(rows) || !rows[i].Valid {
			return 0
		}
		return roundTo(rows[i].Value, 6)
	}

	out := make([]TimelinePoint, TimelineSamples)
	for i := range out {
		out[i] = TimelinePoint{
			Time:      fmt.Sprintf("Sample %d", i+1),
			CodeLlama: sample(series[0], i),
			Gemma2B:   sample(series[1], i),
			Llama370B: sample(series[2], i),
		}
	}
	return out
}

// Efficiency returns response length versus energy for the Gemma 2B and
// Gemma 7B rows that carry both a word count and an energy value. Each model
// contributes at most EfficiencyPointsPerModel points, evenly sampled from its
// points ordered by (energy, responseLength).
func (d *Dataset) Efficiency() []EfficiencyPoint {
	rows := make([]Record, 0, len(d.records))
	for _, r := range d.records {
		if r.WordCount.Valid && r.EnergyTotal.Valid {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.EnergyTotal.Value != b.EnergyTotal.Value {
			return a.EnergyTotal.Value < b.EnergyTotal.Value
		}
		return a.WordCount.Value < b.WordCount.Value
	})

	byModel := make(map[string][]EfficiencyPoint)
	for _, r := range rows {
		name := efficiencyName(r.Model)
		var duration float64
		if r.TotalDuration.Valid {
			duration = roundTo(r.TotalDuration.Value/nanosPerSecond, 1)
		}
		byModel[name] = append(byModel[name], EfficiencyPoint{
			ResponseLength: int(r.WordCount.Value),
			Energy:         roundTo(r.EnergyTotal.Value, 6),
			Model:          name,
			Duration:       duration,
		})
	}

	names := make([]string, 0, len(byModel))
	for name := range byModel {
		names = append(names, name)
	}
	sort.Strings(names)

	out := []EfficiencyPoint{}
	for _, name := range names {
		if !efficiencyModels[name] {
			continue
		}
		points := byModel[name]
		sort.SliceStable(points, func(i, j int) bool {
			if points[i].Energy != points[j].Energy {
				return points[i].Energy < points[j].Energy
			}
			return points[i].ResponseLength < points[j].ResponseLength
		})

		if len(points) <= EfficiencyPointsPerModel {
			out = append(out, points...)
			continue
		}
		step := float64(len(points)) / EfficiencyPointsPerModel
		for i := 0; i < EfficiencyPointsPerModel; i++ {
			out = append(out, points[int(float64(i)*step)])
		}
	}
	return out
}

// GPUCPUDistribution compares, per model, the mean GPU energy measured on the
// workstation with the mean CPU energy measured on laptop1, or on the server
// when there is no laptop1 data. Models lacking either side are left out.
// Values are in Wh with 2 decimals.
func (d *Dataset) GPUCPUDistribution() []GPUCPUShare {
	out := []GPUCPUShare{}
	for _, model := range d.Models() {
		var gpu, laptop1, server []Measurement
		for _, r := range d.records {
			if r.Model != model {
				continue
			}
			switch r.Platform {
			case "workstation":
				gpu = append(gpu, r.EnergyGPU)
			case "laptop1":
				laptop1 = append(laptop1, r.EnergyCPU)
			case "server":
				server = append(server, r.EnergyCPU)
			}
		}

		cpu := laptop1
		if len(cpu) == 0 {
			cpu = server
		}
		if len(gpu) == 0 || len(cpu) == 0 {
			continue
		}

		gpuMean, _ := mean(gpu)
		cpuMean, _ := mean(cpu)
		out = append(out, GPUCPUShare{
			Model: displayName(model),
			GPU:   roundTo(gpuMean*whPerKWh, 2),
			CPU:   roundTo(cpuMean*whPerKWh, 2),
		})
	}
	return out
}

// efficiencyName maps a model identifier to the label used by the
// efficiency chart, e.g. alpaca_gemma_2b to "Gemma 2B".
func efficiencyName(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "gemma") && strings.Contains(m, "2b"):
		return "Gemma 2B"
	case strings.Contains(m, "gemma") && strings.Contains(m, "7b"):
		return "Gemma 7B"
	case strings.Contains(m, "llama3") && strings.Contains(m, "8b"):
		return "Llama3 8B"
	case strings.Contains(m, "llama3") && strings.Contains(m, "70b"):
		return "Llama3 70B"
	case strings.Contains(m, "codellama") && strings.Contains(m, "70b"):
		return "CodeLlama 70B"
	case strings.Contains(m, "codellama") && strings.Contains(m, "7b"):
		return "CodeLlama 7B"
	default:
		return model
	}
}

// displayName drops dataset prefixes and title-cases the rest, e.g.
// alpaca_llama3_70b to "Llama3 70B" and codellama_7b to "Codellama 7B".
func displayName(model string) string {
	s := strings.ReplaceAll(model, "alpaca_", "")
	s = strings.ReplaceAll(s, "codefeedback_", "")
	s = strings.ReplaceAll(s, "_", " ")
	return titleCase(strings.TrimSpace(s))
}

// titleCase upper-cases every letter that follows a non-letter and
// lower-cases the others.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
