package cfg

import (
	"os"
	"strconv"

	"osr-predict/internal/common"
)

// Settings are the ambient settings of a run, resolved from the environment
// or a YAML file rather than the command line.
type Settings struct {
	MinProbability float64 // default for -P
	DataPath       string  // run history directory, empty disables it
	MetricsFile    string  // Prometheus textfile, empty disables it
	LogFormat      string  // console or json
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MinProbability: common.DefaultOpenSetMinProbability,
		LogFormat:      common.DefaultLogFormat,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
