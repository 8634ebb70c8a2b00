package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"osr-predict/internal/common"
)

// ConfigFile is the YAML layout read from CONFIG_FILE.
type ConfigFile struct {
	OpenSet struct {
		MinProbability float64 `yaml:"minProbability"`
	} `yaml:"openSet"`

	System struct {
		DataPath    string `yaml:"dataPath"`
		MetricsFile string `yaml:"metricsFile"`
		LogFormat   string `yaml:"logFormat"`
	} `yaml:"system"`
}

// Load resolves the ambient settings. A .env file is loaded first when
// present; settings then come from the YAML file named by CONFIG_FILE, with
// environment variables taking precedence, or from the environment alone.
func Load() (Settings, error) {
	if err := loadDotEnv(); err != nil {
		return Settings{}, err
	}

	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadDotEnv() error {
	path := getEnvOrDefault(common.EnvDotEnvFile, common.DefaultDotEnvFile)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	minProb := config.OpenSet.MinProbability
	if minProb == 0 {
		minProb = common.DefaultOpenSetMinProbability
	}

	settings := Settings{
		MinProbability: getFloatOrDefault(common.EnvOpenSetMinProbability, minProb),
		DataPath:       getEnvOrDefault(common.EnvDataPath, config.System.DataPath),
		MetricsFile:    getEnvOrDefault(common.EnvMetricsFile, config.System.MetricsFile),
		LogFormat:      getEnvOrDefault(common.EnvLogFormat, orDefault(config.System.LogFormat, common.DefaultLogFormat)),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		MinProbability: getFloatOrDefault(common.EnvOpenSetMinProbability, common.DefaultOpenSetMinProbability),
		DataPath:       os.Getenv(common.EnvDataPath),    // optional
		MetricsFile:    os.Getenv(common.EnvMetricsFile), // optional
		LogFormat:      getEnvOrDefault(common.EnvLogFormat, common.DefaultLogFormat),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// validateSettings checks the resolved ambient settings.
func validateSettings(settings *Settings) error {
	if !(settings.MinProbability >= common.MinOpenSetProbability && settings.MinProbability <= common.MaxOpenSetProbability) {
		return fmt.Errorf("open-set minimum probability must be between 0 and 1, got %g", settings.MinProbability)
	}

	switch settings.LogFormat {
	case common.LogFormatConsole, common.LogFormatJSON:
	default:
		return fmt.Errorf("log format must be %q or %q, got %q", common.LogFormatConsole, common.LogFormatJSON, settings.LogFormat)
	}

	if settings.DataPath != "" {
		info, err := os.Stat(settings.DataPath)
		if err != nil {
			return fmt.Errorf("data path %s: %w", settings.DataPath, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data path %s is not a directory", settings.DataPath)
		}
	}

	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
