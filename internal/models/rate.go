package models

// RateRecord is a financing-rate eligibility rule for a project and unit type
// within an optional gross area range.
type RateRecord struct {
	ID          int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectCode string   `json:"project_code" gorm:"index:idx_rate_lookup;size:16;not null"`
	UnitType    string   `json:"unit_type" gorm:"index:idx_rate_lookup;size:16;not null"`
	AreaMin     *float64 `json:"area_min"`
	AreaMax     *float64 `json:"area_max"`
	MonthlyRate float64  `json:"monthly_rate"`
	MemoRef     string   `json:"memo_ref"`
	IsActive    bool     `json:"is_active" gorm:"not null"`
}

func (RateRecord) TableName() string { return "financing_rates" }

// AreaRange is the matched gross area bracket of a rate rule.
type AreaRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// RateMatch is the outcome of a rate eligibility query.
type RateMatch struct {
	Eligible    bool       `json:"eligible"`
	MonthlyRate *float64   `json:"monthly_rate,omitempty"`
	MemoRef     string     `json:"memo_ref,omitempty"`
	Match       *AreaRange `json:"match,omitempty"`
}
