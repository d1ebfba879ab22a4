package observe

import "errors"

// Configuration errors.
var (
	// ErrMissingServiceName indicates Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSamplePct indicates Tracing.SamplePct is not in [0.0, 1.0].
	ErrInvalidSamplePct = errors.New("observe: sample percentage must be between 0.0 and 1.0")

	// ErrUnknownTracingExporter indicates an unknown tracing exporter name.
	ErrUnknownTracingExporter = errors.New("observe: unknown tracing exporter")

	// ErrUnknownMetricsExporter indicates an unknown metrics exporter name.
	ErrUnknownMetricsExporter = errors.New("observe: unknown metrics exporter")

	// ErrUnknownLogLevel indicates an unknown log level.
	ErrUnknownLogLevel = errors.New("observe: unknown log level")
)

// Validation constants.
const (
	// MinSamplePct is the minimum valid sampling percentage.
	MinSamplePct = 0.0
	// MaxSamplePct is the maximum valid sampling percentage.
	MaxSamplePct = 1.0
)

// ValidTracingExporters lists valid tracing exporter names.
var ValidTracingExporters = []string{"otlp", "stdout", "none", ""}

// ValidMetricsExporters lists valid metrics exporter names.
var ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}

// ValidLogLevels lists valid log level names.
var ValidLogLevels = []string{"debug", "info", "warn", "error", ""}

// RedactedFields lists field keys that are automatically redacted in logs.
// Call arguments and cached values may carry user data; credentials never
// belong in log output.
var RedactedFields = []string{
	"args",
	"value",
	"result",
	"password",
	"secret",
	"token",
	"api_key",
	"apiKey",
	"credential",
	"authorization",
	"cookie",
}
