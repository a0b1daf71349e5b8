// Package db opens the gorm connection used by the database-backed catalog.
package db

import (
	"fmt"
	"net"
	"strconv"

	mysqlcfg "github.com/go-sql-driver/mysql"
	"github.com/zulandar/drillplan/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds a MySQL DSN from config.
func DSN(c config.MySQLConfig) string {
	mc := mysqlcfg.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	return mc.FormatDSN()
}

// Open connects to the catalog database selected by cfg.Backend. The file
// backend has no database and is rejected.
func Open(cfg config.CatalogConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.Path), gcfg)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite %s: %w", cfg.Path, err)
		}
		return db, nil
	case config.BackendMySQL:
		db, err := gorm.Open(mysql.Open(DSN(cfg.MySQL)), gcfg)
		if err != nil {
			return nil, fmt.Errorf("db: connect to %s:%d/%s: %w", cfg.MySQL.Host, cfg.MySQL.Port, cfg.MySQL.Database, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("db: backend %q has no database", cfg.Backend)
	}
}
