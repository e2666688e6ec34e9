package config

// Package config provides structures and utilities for managing the
// extraction engine's configuration.

// EmbeddedConfig holds the raw bytes of the configuration file, typically
// embedded into the worker binary and passed from main.
type EmbeddedConfig []byte

// EngineConfig holds the engine defaults that bound one extraction run.
type EngineConfig struct {
	// DefaultLimit is the maximum number of rows requested per source query.
	// A query returning fewer rows than this terminates the offset strategy.
	DefaultLimit int `yaml:"default_limit"`
	// DefaultBatchSize is the number of rows per processed group; the engine
	// heartbeats and checkpoints after every group. Page-style sources
	// collapse this to one page per group.
	DefaultBatchSize int `yaml:"default_batch_size"`
	// HeartbeatDetails toggles sending cursor progress in heartbeats.
	HeartbeatDetails bool `yaml:"heartbeat_details"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g. "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled toggles the Prometheus recorder; when false the noop recorder
	// is used.
	Enabled bool `yaml:"enabled"`
	// ListenAddr is the address the /metrics endpoint is served on. Empty
	// disables the listener.
	ListenAddr string `yaml:"listen_addr"`
}

// InfrastructureConfig holds logical dependency settings for infrastructure
// components.
type InfrastructureConfig struct {
	// RepositoryDBRef is the name of the database connection used by the
	// repositories (a key into DatabaseConfigs).
	RepositoryDBRef string `yaml:"repository_db_ref"`
}

// ExtractConfig holds all configuration under the "extract" top-level key.
type ExtractConfig struct {
	Engine         EngineConfig         `yaml:"engine"`
	Logging        LoggingConfig        `yaml:"logging"`
	Metrics        MetricsConfig        `yaml:"metrics"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	// DatabaseConfigs holds raw per-connection database blobs, decoded by the
	// database adaptor with mapstructure.
	DatabaseConfigs map[string]interface{} `yaml:"database"`
	// SourceConfigs holds raw per-connector source blobs keyed by source
	// connector id, decoded by the source adaptor with mapstructure.
	SourceConfigs map[string]interface{} `yaml:"sources"`
}

// Config is the root structure for the whole application configuration.
type Config struct {
	Extract ExtractConfig `yaml:"extract"`
	// EmbeddedConfig holds configuration loaded from an embedded source, not
	// from YAML.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a new Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			Engine: EngineConfig{
				DefaultLimit:     1000,
				DefaultBatchSize: 100,
				HeartbeatDetails: true,
			},
			Logging: LoggingConfig{Level: "INFO"},
			Metrics: MetricsConfig{Enabled: true},
			Infrastructure: InfrastructureConfig{
				RepositoryDBRef: "metadata",
			},
			DatabaseConfigs: map[string]interface{}{},
			SourceConfigs:   map[string]interface{}{},
		},
	}
}
