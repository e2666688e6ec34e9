// Package mysql registers the MySQL dialector with the gorm adaptor.
package mysql

import (
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	gormadaptor "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/database/gorm"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
)

// init registers the MySQL dialector factory with the gorm adaptor.
func init() {
	gormadaptor.RegisterDialector("mysql", func(cfg config.DatabaseConfig) (gorm.Dialector, error) {
		dsn, err := ConnectionString(cfg)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	})
}

// ConnectionString builds the DSN expected by gorm.io/driver/mysql.
func ConnectionString(cfg config.DatabaseConfig) (string, error) {
	if cfg.Host == "" {
		return "", errors.New("mysql host cannot be empty")
	}
	dsnConfig := mysqldriver.NewConfig()
	dsnConfig.Net = "tcp"
	dsnConfig.Addr = cfg.Host
	if cfg.Port != 0 {
		dsnConfig.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}
	dsnConfig.User = cfg.User
	dsnConfig.Passwd = cfg.Password
	dsnConfig.DBName = cfg.Database
	dsnConfig.ParseTime = true
	dsnConfig.Params = map[string]string{"charset": "utf8mb4"}
	return dsnConfig.FormatDSN(), nil
}
