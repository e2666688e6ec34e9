// Package postgres registers the PostgreSQL dialector with the gorm adaptor.
// Redshift connections reuse the same dialector.
package postgres

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	gormadaptor "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/database/gorm"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
)

// init registers the PostgreSQL dialector factory with the gorm adaptor.
func init() {
	factory := func(cfg config.DatabaseConfig) (gorm.Dialector, error) {
		dsn, err := ConnectionString(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.Open(dsn), nil
	}
	gormadaptor.RegisterDialector("postgres", factory)
	gormadaptor.RegisterDialector("redshift", factory)
}

// ConnectionString builds the DSN expected by gorm.io/driver/postgres.
func ConnectionString(cfg config.DatabaseConfig) (string, error) {
	if cfg.Host == "" {
		return "", errors.New("postgres host cannot be empty")
	}
	sslmode := cfg.Sslmode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslmode), nil
}
