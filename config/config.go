package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{Message: message}
}

// BaseConfig contains configuration fields common to all services
type BaseConfig struct {
	// Service identification
	ServiceName string `envconfig:"SERVICE_NAME" required:"true"`
	Host        string `envconfig:"HOST" default:"0.0.0.0"`
	Port        string `envconfig:"PORT" required:"true"`

	// OpenTelemetry configuration
	JaegerEndpoint  string `envconfig:"JAEGER_ENDPOINT" default:"jaeger:4317"`
	MetricsEndpoint string `envconfig:"METRICS_ENDPOINT" default:"otel-collector:4317"`

	// Pyroscope configuration; empty disables profiling
	PyroscopeEndpoint string `envconfig:"PYROSCOPE_ENDPOINT" default:""`

	// HTTP Client configuration
	DialTimeout   time.Duration `envconfig:"DIAL_TIMEOUT" default:"10s"`
	DialKeepAlive time.Duration `envconfig:"DIAL_KEEPALIVE" default:"30s"`
	MaxIdleConns  int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ClientTimeout time.Duration `envconfig:"CLIENT_TIMEOUT" default:"30s"`
}

// Validate checks the base configuration for required values
func (c *BaseConfig) Validate() error {
	if c.ServiceName == "" {
		return NewConfigError("SERVICE_NAME is required")
	}
	if c.Host == "" {
		return NewConfigError("HOST is required")
	}
	if c.Port == "" {
		return NewConfigError("PORT is required")
	}
	return nil
}

// GetAddress returns the fully formatted address for the service
func (c *BaseConfig) GetAddress() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Validator interface for config structs with custom validation
type Validator interface {
	Validate() error
}

// LoadConfig loads configuration from environment variables into the provided struct
func LoadConfig(prefix string, cfg interface{}) error {
	if err := envconfig.Process(prefix, cfg); err != nil {
		return fmt.Errorf("failed to process environment variables: %w", err)
	}
	return nil
}

// LoadAndValidate loads and validates configuration
func LoadAndValidate(prefix string, cfg interface{}) error {
	if err := LoadConfig(prefix, cfg); err != nil {
		return err
	}

	if validator, ok := cfg.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// LogConfig logs the configuration values for debugging
func LogConfig(cfg interface{}) {
	log.Printf("Configuration: %+v", cfg)
}
