package models

import "time"

// UnitRecord is one inventory unit as served to clients. It is rebuilt from
// the spreadsheet feed and the metadata tables on every fetch.
type UnitRecord struct {
	UnitID       string  `json:"unit_id"`
	PropertyCode string  `json:"property_code"`
	PropertyName string  `json:"property_name"`
	City         string  `json:"city"`
	Address      string  `json:"address"`
	TowerCode    string  `json:"tower_code"`
	TowerName    string  `json:"tower_name"`
	BuildingUnit string  `json:"building_unit"`
	Floor        string  `json:"floor"`
	FloorBand    string  `json:"floor_band"`
	UnitType     string  `json:"unit_type"`
	Status       string  `json:"status"`
	GrossAreaSqm float64 `json:"gross_area_sqm"`
	Amenities    string  `json:"amenities"`
	Facing       string  `json:"facing"`
	RFODate      string  `json:"rfo_date"`
	ListPrice    float64 `json:"list_price"`
	PricePerSqm  float64 `json:"price_per_sqm"`
}

// PropertyMeta maps a property code to its display name and location.
type PropertyMeta struct {
	Code    string `json:"code" gorm:"primaryKey;size:16"`
	Name    string `json:"name" gorm:"not null"`
	City    string `json:"city"`
	Address string `json:"address"`
	Active  bool   `json:"active" gorm:"not null"`
}

func (PropertyMeta) TableName() string { return "property_meta" }

// TowerMeta maps a property/tower code pair to the tower's display name.
type TowerMeta struct {
	PropertyCode string `json:"property_code" gorm:"primaryKey;size:16"`
	TowerCode    string `json:"tower_code" gorm:"primaryKey;size:32"`
	TowerName    string `json:"tower_name"`
}

func (TowerMeta) TableName() string { return "tower_meta" }

// SyncLog describes the most recent upstream spreadsheet sync.
type SyncLog struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	SourceFile string `json:"source_file"`

	// SyncedAt is zero when the log timestamp could not be parsed
	SyncedAt time.Time `json:"-"`
}

// Catalog is the result of one aggregation pass.
type Catalog struct {
	Units      []UnitRecord `json:"units"`
	LastSynced *SyncLog     `json:"last_synced"`
}
