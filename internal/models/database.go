package models

import (
	"fmt"
	"strings"

	"github.com/consultplan/consultplan/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.DSN))
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

// sqliteDSN makes sure foreign key enforcement is requested in the DSN.
// SQLite turns it off per connection, so a one-shot PRAGMA would only cover
// whichever pooled connection happened to execute it.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&Consultant{},
		&Project{},
		&Assignment{},
	)
}

func GetDB() *gorm.DB {
	return DB
}
