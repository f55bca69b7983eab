package infra

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inventario/internal/config"
	"inventario/internal/schema"
)

// NewDatabase opens a GORM connection for the configured driver, sets pool
// limits, and runs the idempotent schema sync (create tables, add missing
// columns, seed sites). TranslateError is on so duplicate-key violations
// surface as gorm.ErrDuplicatedKey regardless of driver, which is what the
// handlers map to 409.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := schema.Sync(db); err != nil {
		return nil, fmt.Errorf("sincronización de esquema: %w", err)
	}
	return db, nil
}

// Open connects by driver/dsn.
//
// MySQL DSN example:
//
//	user:pass@tcp(127.0.0.1:3306)/inventario?parseTime=true&charset=utf8mb4&loc=Local
//
// Postgres DSN example:
//
//	host=localhost port=5432 user=inv password=inv dbname=inventario sslmode=disable
func Open(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	switch driver {
	case "mysql":
		return gorm.Open(mysql.Open(dsn), gcfg)
	case "postgres":
		return gorm.Open(postgres.Open(dsn), gcfg)
	default:
		return nil, fmt.Errorf("driver de base de datos no soportado: %s", driver)
	}
}
