// Package gorm adapts GORM connections and transactions to the engine's
// persistence contracts. Driver subpackages register their dialectors here.
package gorm

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

// Connection wraps an open GORM handle together with the configuration it was
// opened from.
type Connection struct {
	db    *gorm.DB
	sqlDB *sql.DB
	cfg   config.DatabaseConfig
	name  string
}

// NewConnection wraps an already-opened *gorm.DB.
func NewConnection(db *gorm.DB, cfg config.DatabaseConfig, name string) (*Connection, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	return &Connection{db: db, sqlDB: sqlDB, cfg: cfg, name: name}, nil
}

// Gorm returns the underlying *gorm.DB instance.
// NOTE: intended for use within the gorm adaptor and repository layer only.
func (c *Connection) Gorm() *gorm.DB {
	return c.db
}

// SQLDB returns the underlying *sql.DB, used by the migration runner.
func (c *Connection) SQLDB() (*sql.DB, error) {
	if c.sqlDB == nil {
		return nil, fmt.Errorf("underlying sql.DB is nil")
	}
	return c.sqlDB, nil
}

func (c *Connection) Type() string {
	return c.cfg.Type
}

func (c *Connection) Name() string {
	return c.name
}

func (c *Connection) Ping(ctx context.Context) error {
	if c.sqlDB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	return c.sqlDB.PingContext(ctx)
}

func (c *Connection) Close() error {
	if c.sqlDB != nil {
		logger.Infof("Closing database connection '%s'...", c.name)
		return c.sqlDB.Close()
	}
	return nil
}

// NewGormLogger creates a gorm logger that routes output through the
// application logger at the given level.
func NewGormLogger(level string) gorm_logger.Interface {
	var gormLevel gorm_logger.LogLevel
	switch strings.ToUpper(level) {
	case "ERROR":
		gormLevel = gorm_logger.Error
	case "WARN":
		gormLevel = gorm_logger.Warn
	case "INFO":
		gormLevel = gorm_logger.Info
	default:
		gormLevel = gorm_logger.Silent
	}

	return gorm_logger.New(
		NewGormWriter(),
		gorm_logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GormWriter redirects GORM log output to the application logger.
type GormWriter struct{}

// NewGormWriter creates a new instance of GormWriter.
func NewGormWriter() *GormWriter {
	return &GormWriter{}
}

// Printf implements gorm_logger.Writer.
func (w *GormWriter) Printf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	// SQL trace lines are demoted to DEBUG; everything else is INFO.
	if strings.Contains(msg, "SELECT") || strings.Contains(msg, "INSERT") || strings.Contains(msg, "UPDATE") || strings.Contains(msg, "DELETE") {
		logger.Debugf("[GORM] %s", msg)
	} else {
		logger.Infof("[GORM] %s", msg)
	}
}
