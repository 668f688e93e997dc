package instrumentation

import (
	"fmt"
	"time"
)

// Config holds the configuration for OpenTelemetry instrumentation.
// Values are populated from the application's telemetry config section.
type Config struct {
	// ServiceName is the name of the service (default: meetbook)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// ServiceInstanceID is the unique instance identifier (default: hostname)
	ServiceInstanceID string

	// Enabled determines if instrumentation is active
	Enabled bool

	// MetricsExporter is one of "prometheus", "otlp", "stdout"
	MetricsExporter string

	// TracingExporter is one of "otlp", "stdout", "none"
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint without protocol prefix,
	// e.g. "localhost:4318"
	OTLPEndpoint string

	// OTLPInsecure disables TLS for OTLP export. Local development only.
	OTLPInsecure bool

	// TraceSamplingRate is the sampling ratio for traces (0.0 to 1.0)
	TraceSamplingRate float64

	// DetailedLabels adds the booking reason label to the duration
	// histogram. Reason codes are a closed set, but the extra series are
	// rarely needed outside debugging.
	DetailedLabels bool

	// AuditLogging configures tool audit logging.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	// Enabled determines if audit logging is active
	Enabled bool

	// IncludePII logs raw session identifiers and user names instead of
	// their anonymized hashes.
	IncludePII bool
}

// DefaultConfig returns the instrumentation defaults: prometheus metrics,
// tracing off, anonymized audit logging on.
func DefaultConfig() Config {
	return Config{
		ServiceName:       "meetbook",
		ServiceVersion:    "unknown",
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterNone,
		TraceSamplingRate: 0.1,
		AuditLogging: AuditLoggingConfig{
			Enabled: true,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if (c.TracingExporter == ExporterOTLP || c.MetricsExporter == ExporterOTLP) && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using an OTLP exporter")
	}

	return nil
}

// Constants for metric label values.
const (
	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Calendar providers
	ProviderGoogle = "google"
	ProviderMemory = "memory"
	ProviderMeet   = "meet"

	// Calendar operations
	OperationList   = "list"
	OperationCreate = "create"

	// Availability query kinds
	QueryList    = "list"
	QuerySuggest = "suggest"
	QueryCheck   = "check"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	// DefaultMetricInterval is the export interval of periodic readers.
	DefaultMetricInterval = 10 * time.Second
)
