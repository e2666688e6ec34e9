package source_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	gormadaptor "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/database/gorm"
	source "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/source"
	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
)

func setupSQLiteConn(t *testing.T) *gormadaptor.Connection {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gormDB.Exec(
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, updated_at INTEGER)").Error)
	for i := 1; i <= 12; i++ {
		require.NoError(t, gormDB.Exec(
			"INSERT INTO users (id, name, updated_at) VALUES (?, ?, ?)",
			i, fmt.Sprintf("user-%02d", i), 1000+i).Error)
	}

	conn, err := gormadaptor.NewConnection(gormDB, config.DatabaseConfig{Type: "sqlite", Database: ":memory:"}, "warehouse")
	require.NoError(t, err)
	return conn
}

func TestSQLClient_Read(t *testing.T) {
	client := source.NewSQLClient(setupSQLiteConn(t), 0)
	src := model.SourceConfig{IncrementType: model.IncrementTypeOffset}

	rows, err := client.Read(context.Background(), port.ReadParams{
		Query:     "SELECT * FROM users",
		Variables: map[string]int64{"offset": 0, "limit": 5},
		Source:    src,
	})
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "user-01", rows[0].Data["name"])
	assert.False(t, rows[0].EmittedAt.IsZero())

	// The next window resumes where the first left off.
	rows, err = client.Read(context.Background(), port.ReadParams{
		Query:     "SELECT * FROM users",
		Variables: map[string]int64{"offset": 10, "limit": 5},
		Source:    src,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "user-11", rows[0].Data["name"])
}

func TestSQLClient_CursorBound(t *testing.T) {
	client := source.NewSQLClient(setupSQLiteConn(t), 0)

	rows, err := client.Read(context.Background(), port.ReadParams{
		Query:       "SELECT * FROM users;",
		CursorField: "updated_at",
		CursorValue: "1010",
		Variables:   map[string]int64{"offset": 0, "limit": 100},
		Source:      model.SourceConfig{IncrementType: model.IncrementTypeOffset},
	})
	require.NoError(t, err)
	// The bound is inclusive: rows 10, 11 and 12 qualify.
	require.Len(t, rows, 3)
	assert.Equal(t, "user-10", rows[0].Data["name"])
}

func TestSQLClient_QueryError(t *testing.T) {
	client := source.NewSQLClient(setupSQLiteConn(t), 0)

	_, err := client.Read(context.Background(), port.ReadParams{
		Query:     "SELECT * FROM missing_table",
		Variables: map[string]int64{"offset": 0, "limit": 10},
		Source:    model.SourceConfig{},
	})
	require.Error(t, err)
}

func TestHTTPClient_Read(t *testing.T) {
	var gotPage, gotPerPage, gotCursor string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		gotPerPage = r.URL.Query().Get("per_page")
		gotCursor = r.URL.Query().Get("updated_at")
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": "pk-001", "name": "alpha"},
				{"id": "pk-002", "name": "beta"},
			},
		})
	}))
	defer server.Close()

	client := source.NewHTTPClient(source.ConnectorConfig{
		Type:    source.ConnectorTypeHTTP,
		BaseURL: server.URL,
		Path:    "/api/v1/items",
		Headers: map[string]string{"Authorization": "Bearer token-1"},
		DataKey: "data",
	}, 0)

	rows, err := client.Read(context.Background(), port.ReadParams{
		CursorField: "updated_at",
		CursorValue: "1005",
		Variables:   map[string]int64{"page": 2, "per_page": 50},
		Source:      model.SourceConfig{IncrementType: model.IncrementTypePage},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alpha", rows[0].Data["name"])
	assert.Equal(t, "2", gotPage)
	assert.Equal(t, "50", gotPerPage)
	assert.Equal(t, "1005", gotCursor)
}

func TestHTTPClient_BareArrayBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{{"id": "pk-001"}})
	}))
	defer server.Close()

	client := source.NewHTTPClient(source.ConnectorConfig{BaseURL: server.URL}, 0)
	rows, err := client.Read(context.Background(), port.ReadParams{
		Variables: map[string]int64{"page": 1, "per_page": 10},
		Source:    model.SourceConfig{IncrementType: model.IncrementTypePage},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestHTTPClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := source.NewHTTPClient(source.ConnectorConfig{BaseURL: server.URL}, 0)
	_, err := client.Read(context.Background(), port.ReadParams{
		Variables: map[string]int64{"page": 1, "per_page": 10},
	})
	require.Error(t, err)
}

func TestResolver(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Extract.SourceConfigs = map[string]interface{}{
		"conn-http": map[string]interface{}{
			"type":     "http",
			"base_url": "http://example.invalid",
		},
		"conn-broken": map[string]interface{}{
			"type": "carrier_pigeon",
		},
	}
	resolver := source.NewResolver(cfg, gormadaptor.NewProvider(cfg))

	s := model.NewSync("ws-1", "conn-http", "dst-1",
		model.ModelConfig{Name: "items", Query: "items", PrimaryKey: "id"},
		model.SourceConfig{IncrementType: model.IncrementTypePage}, model.SyncModeFullRefresh)

	client, err := resolver.ClientFor(context.Background(), s)
	require.NoError(t, err)
	assert.IsType(t, &source.HTTPClient{}, client)

	// Clients are cached per connector id.
	again, err := resolver.ClientFor(context.Background(), s)
	require.NoError(t, err)
	assert.Same(t, client, again)

	s2 := model.NewSync("ws-1", "conn-broken", "dst-1",
		model.ModelConfig{Name: "items", Query: "items", PrimaryKey: "id"},
		model.SourceConfig{}, model.SyncModeFullRefresh)
	_, err = resolver.ClientFor(context.Background(), s2)
	assert.ErrorContains(t, err, "carrier_pigeon")

	s3 := model.NewSync("ws-1", "conn-unknown", "dst-1",
		model.ModelConfig{Name: "items", Query: "items", PrimaryKey: "id"},
		model.SourceConfig{}, model.SyncModeFullRefresh)
	_, err = resolver.ClientFor(context.Background(), s3)
	assert.ErrorContains(t, err, "no source connector configured")
}
