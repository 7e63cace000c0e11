package database

import (
	"context"
	"strings"

	"gorm.io/gorm/clause"

	"salesdesk/server/internal/models"
)

// upsertPropertyMeta inserts or updates property directory rows by code.
func (d *Database) upsertPropertyMeta(ctx context.Context, properties []models.PropertyMeta) error {
	if len(properties) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "city", "address", "active"}),
	}).Create(&properties).Error
}

// upsertTowerMeta inserts or updates tower directory rows.
func (d *Database) upsertTowerMeta(ctx context.Context, towers []models.TowerMeta) error {
	if len(towers) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_code"}, {Name: "tower_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"tower_name"}),
	}).Create(&towers).Error
}

// insertRates stores rate rules with codes upper-cased the way lookups expect.
func (d *Database) insertRates(ctx context.Context, rates []models.RateRecord) error {
	if len(rates) == 0 {
		return nil
	}
	for i := range rates {
		rates[i].ProjectCode = strings.ToUpper(strings.TrimSpace(rates[i].ProjectCode))
		rates[i].UnitType = strings.ToUpper(strings.TrimSpace(rates[i].UnitType))
	}
	return d.db.WithContext(ctx).Create(&rates).Error
}
