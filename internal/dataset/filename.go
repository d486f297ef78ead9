package dataset

import (
	"slices"
	"strings"
)

// ParseFilename derives the model and platform a measurement file belongs to.
//
// Files are named [prefix_]<family>_<size>_<platform>.csv, for example
// codefeedback_codellama_70b_workstation.csv or alpaca_gemma_2b_laptop1.csv.
// Families are checked in order codellama, llama3, gemma; the first one
// contained anywhere in the name wins. Llama3 models are always reported with
// the alpaca_ prefix, Gemma models only when the file starts with alpaca_.
func ParseFilename(name string) (model, platform string, ok bool) {
	base := strings.TrimSuffix(name, ".csv")
	parts := strings.Split(base, "_")

	var family, prefix string
	switch {
	case strings.Contains(base, "codellama"):
		family, prefix = "codellama", "codellama_"
	case strings.Contains(base, "llama3"):
		family, prefix = "llama3", "alpaca_llama3_"
	case strings.Contains(base, "gemma"):
		family, prefix = "gemma", "gemma_"
		if parts[0] == "alpaca" {
			prefix = "alpaca_gemma_"
		}
	default:
		return "", "", false
	}

	// The family must be a whole token followed by size and platform.
	idx := slices.Index(parts, family)
	if idx < 0 || idx+2 >= len(parts) {
		return "", "", false
	}
	return prefix + parts[idx+1], parts[idx+2], true
}
