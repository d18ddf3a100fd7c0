package domain

import "time"

// Config holds the complete Steamglass configuration.
type Config struct {
	// Server settings
	Server ServerConfig `json:"server"`

	// Component configurations
	Data  DataConfig  `json:"data"`
	Cache CacheConfig `json:"cache"`

	// ReportTTL bounds how long a built report payload may be served
	// from cache before being recomputed.
	ReportTTL time.Duration `json:"reportTTL"`

	// Observability
	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool   `json:"enabled"`
	ServiceName  string `json:"serviceName"`
	ExporterType string `json:"exporterType"` // stdout, otlp, jaeger
	Endpoint     string `json:"endpoint"`
}

// DefaultConfig returns a default single-node configuration: CSV exports
// under ./data, in-process LRU cache, JSON logs.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Data: DataConfig{
			Dir: "./data",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 1024,
			LocalTTL:     5 * time.Minute,
		},
		ReportTTL: 5 * time.Minute,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "steamglass",
		},
	}
}
