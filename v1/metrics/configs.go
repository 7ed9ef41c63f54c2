package metrics

// Config defines the Prometheus metrics server.
type Config struct {
	// Address is the listen address of the /metrics endpoint, e.g. ":9090".
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS" default:":9090"`

	// EnableDefaultCollectors registers Go runtime, process and build info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS" default:"true"`

	// Namespace prefixes every metric name created by this package.
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE" default:"flowtrace"`

	// ServiceName is added as the constant "service" label.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME" default:"flowtrace"`
}
