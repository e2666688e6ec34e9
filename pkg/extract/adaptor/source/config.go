// Package source resolves and drives the per-connector clients the engine
// pulls raw records from. Connector definitions live in the application
// configuration, keyed by source connector id; connection establishment and
// rate limiting are handled here so the engine stays protocol-agnostic.
package source

const (
	// ConnectorTypeDatabase reads through a SQL connection managed by the
	// database adaptor.
	ConnectorTypeDatabase = "database"
	// ConnectorTypeHTTP reads a JSON collection endpoint. Page-style and
	// scrape-style connectors both resolve to this client.
	ConnectorTypeHTTP = "http"
)

// ConnectorConfig is the decoded configuration of one source connector.
type ConnectorConfig struct {
	// Type selects the client protocol: "database" or "http".
	Type string `yaml:"type" mapstructure:"type"`

	// DatabaseRef names the database connection to read through. Only used by
	// database connectors.
	DatabaseRef string `yaml:"database_ref" mapstructure:"database_ref"`

	// BaseURL and Path locate the collection endpoint of an HTTP connector.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Path    string `yaml:"path" mapstructure:"path"`
	// Headers are sent verbatim with every request, e.g. an Authorization
	// header.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// DataKey is the response field holding the record array. Empty means the
	// response body itself is the array.
	DataKey string `yaml:"data_key" mapstructure:"data_key"`
	// TimeoutSeconds bounds one HTTP request (default 30).
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}
