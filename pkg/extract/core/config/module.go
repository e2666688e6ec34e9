package config

import "go.uber.org/fx"

// Params defines the dependencies for the config provider.
type Params struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string `name:"envFilePath" optional:"true"`
}

// NewConfigProvider is the fx provider for *Config.
func NewConfigProvider(params Params) (*Config, error) {
	return LoadConfig(params.EnvFilePath, params.EmbeddedConfig)
}

// Module provides the application configuration.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
)
