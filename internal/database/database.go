package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"salesdesk/server/internal/models"
)

// Database is the relational store holding property/tower reference data and
// financing rate rules.
type Database struct {
	db *gorm.DB
}

func NewDatabase(driver, dsn string) (*Database, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{db: db}, nil
}

// NewTestDatabase opens a migrated in-memory SQLite database.
func NewTestDatabase() (*Database, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Every connection to ":memory:" is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	d := &Database{db: db}
	if err := d.RunMigrations(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the store is reachable.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// GetPropertyMeta loads the whole property directory.
func (d *Database) GetPropertyMeta(ctx context.Context) ([]models.PropertyMeta, error) {
	var properties []models.PropertyMeta
	if err := d.db.WithContext(ctx).Order("code").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to load property_meta: %w", err)
	}
	return properties, nil
}

// GetTowerMeta loads the whole tower directory.
func (d *Database) GetTowerMeta(ctx context.Context) ([]models.TowerMeta, error) {
	var towers []models.TowerMeta
	if err := d.db.WithContext(ctx).Order("property_code, tower_code").Find(&towers).Error; err != nil {
		return nil, fmt.Errorf("failed to load tower_meta: %w", err)
	}
	return towers, nil
}

// GetActiveRates returns the active rate rules for a project and unit type in
// insertion order.
func (d *Database) GetActiveRates(ctx context.Context, projectCode, unitType string) ([]models.RateRecord, error) {
	var rates []models.RateRecord
	err := d.db.WithContext(ctx).
		Where("project_code = ? AND unit_type = ? AND is_active = ?", projectCode, unitType, true).
		Order("id").
		Find(&rates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load financing rates: %w", err)
	}
	return rates, nil
}
