package common

// Environment variable keys
const (
	EnvConfigFile            = "CONFIG_FILE"
	EnvOpenSetMinProbability = "OPENSET_MIN_PROBABILITY"
	EnvDataPath              = "DATA_PATH"
	EnvMetricsFile           = "METRICS_FILE"
	EnvLogFormat             = "LOG_FORMAT"
	EnvDotEnvFile            = "DOTENV_FILE"
)

// Configuration defaults
const (
	DefaultOpenSetMinProbability = 0.001
	DefaultLogFormat             = "console"
	DefaultDotEnvFile            = ".env"
	DefaultLineBufferSize        = 1024
	DefaultFeatureCapacity       = 64
)

// Log formats
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Common error messages
const (
	ErrMsgNoProbabilitySupport = "model does not support probability estimates"
	ErrMsgExclusiveOutputModes = "-s, -t and -v cannot be combined (use -a for all three)"
)

// Validation constants
const (
	MinOpenSetProbability = 0.0
	MaxOpenSetProbability = 1.0
)
