// Package sqlite registers the SQLite dialector with the gorm adaptor.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gormadaptor "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/database/gorm"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
)

// init registers the SQLite dialector factory with the gorm adaptor.
func init() {
	gormadaptor.RegisterDialector("sqlite", func(cfg config.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("sqlite database path cannot be empty")
		}
		// The SQLite dialector takes the file path (or :memory:) directly.
		return sqlite.Open(cfg.Database), nil
	})
}
