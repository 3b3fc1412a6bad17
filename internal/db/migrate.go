package db

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for
	// golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/diewo77/timebill/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectAndMigrate opens the database and brings the schema up to date.
// Postgres DSNs get the versioned SQL migrations under ./migrations when
// MIGRATIONS=1; otherwise (and always for sqlite) gorm AutoMigrate keeps dev
// setups working without the migrate tooling.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Surface unique violations as gorm.ErrDuplicatedKey on both
		// drivers so services can map them to conflicts.
		TranslateError: true,
	}

	var db *gorm.DB
	var err error
	isPostgres := strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=")
	for i := 0; i < 5; i++ {
		if isPostgres {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
		} else {
			db, err = gorm.Open(sqlite.Open(dsn), cfg)
		}
		if err == nil {
			break
		}
		slog.Warn("database connection failed, retrying", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if isPostgres && os.Getenv("MIGRATIONS") == "1" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	if err := EnsureSettings(db); err != nil {
		return nil, fmt.Errorf("settings bootstrap: %w", err)
	}
	return db, nil
}

// AutoMigrate applies the gorm schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Settings{},
		&models.Client{},
		&models.Invoice{},
		&models.LineItem{},
	)
}

// EnsureSettings creates the settings singleton with empty defaults if the
// table has no row yet. Called once at startup; updates are the only write
// after that.
func EnsureSettings(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Settings{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&models.Settings{}).Error
}

// runSQLMigrations applies the ordered migrations in ./migrations.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
