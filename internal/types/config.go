package types

type RunMode string

const (
	// ModeLocal runs the API server with in-memory stores and pubsub
	ModeLocal RunMode = "local"
	// ModeAPI runs the API server only
	ModeAPI RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
