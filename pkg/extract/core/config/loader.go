package config

import (
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/exception"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

const moduleName = "config"

// envPattern matches ${VAR} and ${VAR:-default} references in the raw YAML.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandEnv substitutes environment variable references in the raw
// configuration bytes. Unset variables without a default expand to the empty
// string.
func expandEnv(raw []byte) []byte {
	return envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		groups := envPattern.FindSubmatch(match)
		name := string(groups[1])
		if val, ok := os.LookupEnv(name); ok {
			return []byte(val)
		}
		return groups[3]
	})
}

// LoadConfig loads configuration from the embedded YAML and environment
// variables. It is expected to be called once during worker startup.
//
// envFilePath is the path to an optional .env file; embeddedConfig is the
// raw configuration bytes.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	// Unmarshal directly onto the defaults: keys present in the YAML
	// override, absent keys keep their default values.
	if len(embeddedConfig) > 0 {
		expanded := expandEnv(embeddedConfig)
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, exception.NewExtractError(moduleName, "failed to unmarshal embedded config", err, false, false)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Extract.Logging.Level)
	return cfg, nil
}

// Validate checks that the loaded configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Extract.Engine.DefaultLimit <= 0 {
		return exception.NewExtractErrorf(moduleName, "engine.default_limit must be positive, got %d", c.Extract.Engine.DefaultLimit)
	}
	if c.Extract.Engine.DefaultBatchSize <= 0 {
		return exception.NewExtractErrorf(moduleName, "engine.default_batch_size must be positive, got %d", c.Extract.Engine.DefaultBatchSize)
	}
	if c.Extract.Engine.DefaultBatchSize > c.Extract.Engine.DefaultLimit {
		return exception.NewExtractErrorf(moduleName, "engine.default_batch_size (%d) must not exceed engine.default_limit (%d)",
			c.Extract.Engine.DefaultBatchSize, c.Extract.Engine.DefaultLimit)
	}
	return nil
}
