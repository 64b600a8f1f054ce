// Package config provides configuration handling for the logcall-demo command.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatStd     = "std"
	FormatRecords = "records"
)

// Trace exporters.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterYAML     = "yaml"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

// Config is the configuration for the logcall-demo command.
type Config struct {
	// Logging is the logging configuration
	Logging LoggingConfig `yaml:"logging"`
	// Tracing is the tracing configuration
	Tracing TracingConfig `yaml:"tracing"`
	// Delay is how long the asynchronous call stays suspended
	Delay time.Duration `yaml:"delay" default:"100ms"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Format is the log format (json, console, std, records)
	Format string `yaml:"format" default:"json"`
	// Verbosity is the highest logr verbosity level that is logged
	Verbosity int8 `yaml:"verbosity"`
	// LogSpans logs the lifecycle of every span at verbosity 1
	LogSpans bool `yaml:"logSpans"`
}

// TracingConfig configures tracing.
type TracingConfig struct {
	// Exporter is where spans are exported (none, stdout, yaml, otlp-grpc, otlp-http)
	Exporter string `yaml:"exporter" default:"none"`
	// Endpoint is the address of the OpenTelemetry Collector, for the otlp exporters
	Endpoint string `yaml:"endpoint,omitempty"`
	// Synchronous exports every span when it ends, instead of batching
	Synchronous bool `yaml:"synchronous"`
	// ServiceName is the service.name resource attribute
	ServiceName string `yaml:"serviceName" default:"logcall-demo"`
	// ShutdownTimeout bounds the time spent flushing spans on exit
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	// Set only fails for non-pointer arguments and malformed default tags.
	if err := defaults.Set(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfig loads configuration from a file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	return ParseConfig(f)
}

// ParseConfig parses configuration from YAML. Fields not set in r keep their
// defaults, and unknown fields are rejected.
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case FormatJSON, FormatConsole, FormatStd, FormatRecords:
	default:
		return fmt.Errorf("unknown log format: %s", c.Logging.Format)
	}
	if c.Logging.Verbosity < 0 {
		return errors.New("logging.verbosity must not be negative")
	}

	switch c.Tracing.Exporter {
	case ExporterNone, ExporterStdout, ExporterYAML, ExporterOTLPGRPC, ExporterOTLPHTTP:
	default:
		return fmt.Errorf("unknown trace exporter: %s", c.Tracing.Exporter)
	}
	if c.Tracing.ShutdownTimeout <= 0 {
		return errors.New("tracing.shutdownTimeout must be positive")
	}

	if c.Delay < 0 {
		return errors.New("delay must not be negative")
	}
	return nil
}
