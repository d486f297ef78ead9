package scoring

// Model is a logical model identifier known to the energy model's one-hot columns.
type Model int

// Recognized models. ModelUnknown sets no flag.
const (
	ModelUnknown Model = iota
	ModelCodellama7B
	ModelCodellama70B
	ModelGemma2B
	ModelGemma7B
	ModelLlama38B
	ModelLlama370B
)

// modelAliases maps raw identifiers, as they appear in dataset filenames and
// requests, to the logical model. Gemma files may carry an alpaca_ prefix.
var modelAliases = map[string]Model{
	"codellama_7b":      ModelCodellama7B,
	"codellama_70b":     ModelCodellama70B,
	"gemma_2b":          ModelGemma2B,
	"alpaca_gemma_2b":   ModelGemma2B,
	"gemma_7b":          ModelGemma7B,
	"alpaca_gemma_7b":   ModelGemma7B,
	"alpaca_llama3_8b":  ModelLlama38B,
	"alpaca_llama3_70b": ModelLlama370B,
}

// CanonicalModel resolves a raw model identifier. Matching is exact and case sensitive.
func CanonicalModel(raw string) Model {
	return modelAliases[raw]
}

// String returns the raw identifier CanonicalModel resolves back to m.
func (m Model) String() string {
	switch m {
	case ModelCodellama7B:
		return "codellama_7b"
	case ModelCodellama70B:
		return "codellama_70b"
	case ModelGemma2B:
		return "gemma_2b"
	case ModelGemma7B:
		return "gemma_7b"
	case ModelLlama38B:
		return "alpaca_llama3_8b"
	case ModelLlama370B:
		return "alpaca_llama3_70b"
	default:
		return "unknown"
	}
}

// Hardware is a measurement platform known to the energy model's one-hot columns.
type Hardware int

// Recognized platforms. HardwareUnknown sets no flag.
const (
	HardwareUnknown Hardware = iota
	HardwareLaptop1
	HardwareLaptop2
	HardwareWorkstation
	HardwareServer
)

var hardwareNames = map[string]Hardware{
	"laptop1":     HardwareLaptop1,
	"laptop2":     HardwareLaptop2,
	"workstation": HardwareWorkstation,
	"server":      HardwareServer,
}

// CanonicalHardware resolves a raw platform identifier. Matching is exact.
func CanonicalHardware(raw string) Hardware {
	return hardwareNames[raw]
}

func (h Hardware) String() string {
	switch h {
	case HardwareLaptop1:
		return "laptop1"
	case HardwareLaptop2:
		return "laptop2"
	case HardwareWorkstation:
		return "workstation"
	case HardwareServer:
		return "server"
	default:
		return "unknown"
	}
}
