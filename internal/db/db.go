package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/ktsujino/inventory-backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// BuildDSN assembles a go-sql-driver DSN from the environment. Lifecycle
// dates are canonical UTC midnights, so the connection parses time in UTC
// rather than the server locale.
func BuildDSN(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@%s/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.DBUser, cfg.DBPassword, hostAddr(cfg), cfg.DBName)
}

// hostAddr normalizes DB_HOST into a driver address. A Cloud SQL instance
// connection name takes precedence; a bare filesystem path means a unix
// socket; anything already wrapped in tcp()/unix() passes through.
func hostAddr(cfg *config.Config) string {
	switch {
	case cfg.InstanceConnectionName != "":
		return fmt.Sprintf("unix(/cloudsql/%s)", cfg.InstanceConnectionName)
	case strings.HasPrefix(cfg.DBHost, "tcp("), strings.HasPrefix(cfg.DBHost, "unix("):
		return cfg.DBHost
	case strings.HasPrefix(cfg.DBHost, "/"):
		return fmt.Sprintf("unix(%s)", cfg.DBHost)
	default:
		return fmt.Sprintf("tcp(%s:%s)", cfg.DBHost, cfg.DBPort)
	}
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(BuildDSN(cfg)), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Uploads hold a connection across derivative encoding and the attach
	// transaction, so allow a few more open connections than idle ones.
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(15)

	return db, nil
}
