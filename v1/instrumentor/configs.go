package instrumentor

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

// Default values for configuration.
const (
	DefaultAPIURL      = "https://api.braintrust.dev"
	DefaultServiceName = "flowtrace"
	DefaultEnvironment = "DEV"

	tracesPath = "/otel/v1/traces"
)

// Config holds everything read at Instrument time.
type Config struct {
	// APIKey authenticates span export.
	APIKey string `yaml:"api_key" envconfig:"BRAINTRUST_API_KEY"`

	// Parent is the destination project. Empty means "project_name:<ServiceName>".
	Parent string `yaml:"parent" envconfig:"BRAINTRUST_PARENT"`

	// APIURL is the backend base URL.
	APIURL string `yaml:"api_url" envconfig:"BRAINTRUST_API_URL" default:"https://api.braintrust.dev"`

	// FrameworkTelemetryDisabled reports that the framework's built-in
	// telemetry is off. When false a duplicate-traces warning is logged.
	FrameworkTelemetryDisabled bool `yaml:"framework_telemetry_disabled" envconfig:"CREWAI_DISABLE_TELEMETRY"`

	// EnableExport sends spans to the backend over OTLP/HTTP.
	EnableExport bool `yaml:"enable_export" envconfig:"FLOWTRACE_ENABLE_EXPORT"`

	// ServiceName is the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"FLOWTRACE_SERVICE_NAME" default:"flowtrace"`

	// Environment is the deployment environment.
	Environment string `yaml:"environment" envconfig:"ENVIRONMENT" default:"DEV"`

	// Insecure disables TLS for export, for local collectors.
	Insecure bool `yaml:"insecure" envconfig:"FLOWTRACE_EXPORT_INSECURE"`

	// ExportTimeout bounds a single export request.
	ExportTimeout time.Duration `yaml:"export_timeout" envconfig:"FLOWTRACE_EXPORT_TIMEOUT"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read configuration from environment: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML file and overlays the environment on it.
// Variables that are set win over the file; defaults only fill fields the
// file leaves empty.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		return Config{}, err
	}
	overlayUnset(&cfg, file)
	return cfg, nil
}

// overlayUnset copies non-zero fields of file into cfg where the matching
// environment variable is not set.
func overlayUnset(cfg *Config, file Config) {
	dst := reflect.ValueOf(cfg).Elem()
	src := reflect.ValueOf(file)
	t := dst.Type()

	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("envconfig")
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if v := src.Field(i); !v.IsZero() {
			dst.Field(i).Set(v)
		}
	}
}

// Validate checks the configuration for combinations that cannot work.
func (c Config) Validate() error {
	if c.EnableExport && strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Endpoint returns the OTLP/HTTP traces URL derived from APIURL.
func (c Config) Endpoint() string {
	base := c.APIURL
	if base == "" {
		base = DefaultAPIURL
	}
	return strings.TrimRight(base, "/") + tracesPath
}

// Headers returns the export headers: the bearer token and the destination.
func (c Config) Headers() map[string]string {
	headers := map[string]string{
		"x-bt-parent": c.parent(),
	}
	if c.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.APIKey
	}
	return headers
}

func (c Config) parent() string {
	if c.Parent != "" {
		return c.Parent
	}
	return "project_name:" + c.serviceName()
}

func (c Config) serviceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// TracerConfig converts c into the tracer adapter's configuration.
func (c Config) TracerConfig() tracer.Config {
	env := c.Environment
	if env == "" {
		env = DefaultEnvironment
	}
	return tracer.Config{
		ServiceName:   c.serviceName(),
		AppEnv:        env,
		EnableExport:  c.EnableExport,
		Endpoint:      c.Endpoint(),
		Headers:       c.Headers(),
		Insecure:      c.Insecure,
		ExportTimeout: c.ExportTimeout,
	}
}
