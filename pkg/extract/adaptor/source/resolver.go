package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"

	gormadaptor "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/database/gorm"
	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

// Resolver builds and caches one client per source connector id. Connector
// definitions are decoded lazily from the application configuration; database
// connectors read through the shared connection provider.
type Resolver struct {
	cfg      *config.Config
	provider *gormadaptor.Provider

	mu      sync.RWMutex
	clients map[string]port.SourceClient
}

// NewResolver creates a Resolver over the application configuration.
func NewResolver(cfg *config.Config, provider *gormadaptor.Provider) *Resolver {
	return &Resolver{
		cfg:      cfg,
		provider: provider,
		clients:  make(map[string]port.SourceClient),
	}
}

// ClientFor returns the client for the sync's source connector, creating it
// on first use.
func (r *Resolver) ClientFor(_ context.Context, s *model.Sync) (port.SourceClient, error) {
	r.mu.RLock()
	client, ok := r.clients[s.SourceConnectorID]
	r.mu.RUnlock()
	if ok {
		return client, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if client, ok := r.clients[s.SourceConnectorID]; ok {
		return client, nil
	}

	client, err := r.build(s)
	if err != nil {
		return nil, err
	}
	r.clients[s.SourceConnectorID] = client
	return client, nil
}

func (r *Resolver) build(s *model.Sync) (port.SourceClient, error) {
	raw, ok := r.cfg.Extract.SourceConfigs[s.SourceConnectorID]
	if !ok {
		return nil, fmt.Errorf("no source connector configured for id '%s'", s.SourceConnectorID)
	}

	var cc ConnectorConfig
	if err := mapstructure.Decode(raw, &cc); err != nil {
		return nil, fmt.Errorf("failed to decode source connector config '%s': %w", s.SourceConnectorID, err)
	}

	switch cc.Type {
	case ConnectorTypeDatabase:
		if cc.DatabaseRef == "" {
			return nil, fmt.Errorf("source connector '%s' has no database_ref", s.SourceConnectorID)
		}
		conn, err := r.provider.Connection(cc.DatabaseRef)
		if err != nil {
			return nil, fmt.Errorf("failed to open source connection '%s': %w", cc.DatabaseRef, err)
		}
		logger.Debugf("Resolved database source client for connector '%s' (connection '%s')",
			s.SourceConnectorID, cc.DatabaseRef)
		return NewSQLClient(conn, s.Source.RateLimit), nil
	case ConnectorTypeHTTP:
		if cc.BaseURL == "" {
			return nil, fmt.Errorf("source connector '%s' has no base_url", s.SourceConnectorID)
		}
		logger.Debugf("Resolved http source client for connector '%s' (%s)", s.SourceConnectorID, cc.BaseURL)
		return NewHTTPClient(cc, s.Source.RateLimit), nil
	default:
		return nil, fmt.Errorf("unknown source connector type '%s' for id '%s'", cc.Type, s.SourceConnectorID)
	}
}
