package main

import (
	"os"

	"github.com/rs/zerolog"
)

// testModeEnvVar is the environment variable name for enabling test mode.
const testModeEnvVar = "LLM_ENERGY_TEST_MODE"

// isTestMode returns true if test mode is enabled via environment variable.
// Only the exact string "true" enables test mode. Any other value except
// "false" is treated as disabled with a warning.
func isTestMode(logger zerolog.Logger) bool {
	val := os.Getenv(testModeEnvVar)
	switch val {
	case "true":
		return true
	case "", "false":
		return false
	default:
		logger.Warn().
			Str("env_var", testModeEnvVar).
			Str("value", val).
			Msg("Invalid LLM_ENERGY_TEST_MODE value; treating as disabled")
		return false
	}
}
