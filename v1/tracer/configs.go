package tracer

import "time"

// Config defines how the tracer provider and its exporter are built.
type Config struct {
	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"FLOWTRACE_SERVICE_NAME" default:"flowtrace"`

	// AppEnv is recorded as deployment.environment.
	AppEnv string `yaml:"app_env" envconfig:"ENVIRONMENT" default:"DEV"`

	// EnableExport turns on the OTLP/HTTP exporter. When false spans are
	// still created (and visible to span processors) but never leave the process.
	EnableExport bool `yaml:"enable_export" envconfig:"FLOWTRACE_ENABLE_EXPORT"`

	// Endpoint is the full OTLP/HTTP traces URL, e.g.
	// "https://api.braintrust.dev/otel/v1/traces". Empty uses the
	// OTEL_EXPORTER_OTLP_* environment defaults of the exporter.
	Endpoint string `yaml:"endpoint"`

	// Headers are sent with every export request (authorization, project).
	Headers map[string]string `yaml:"-"`

	// Insecure disables TLS for the exporter.
	Insecure bool `yaml:"insecure" envconfig:"FLOWTRACE_EXPORT_INSECURE"`

	// ExportTimeout bounds a single export request. Zero keeps the exporter default.
	ExportTimeout time.Duration `yaml:"export_timeout" envconfig:"FLOWTRACE_EXPORT_TIMEOUT"`
}
