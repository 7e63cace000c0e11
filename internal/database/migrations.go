package database

import (
	"fmt"

	"salesdesk/server/internal/models"
)

func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(
		&models.PropertyMeta{},
		&models.TowerMeta{},
		&models.RateRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Lookups are by code, name (case-insensitive) and tower pair
	if err := d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_property_meta_name
		ON property_meta(LOWER(name));
	`).Error; err != nil {
		return fmt.Errorf("failed to create property name index: %w", err)
	}

	return nil
}
