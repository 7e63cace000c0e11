package availability

import (
	"fmt"
	"strconv"
	"strings"

	"salesdesk/server/config"
	"salesdesk/server/internal/models"
	"salesdesk/server/internal/unitid"
)

// Floor bands used by summary views.
const (
	FloorBandLow  = "LOW"
	FloorBandHigh = "HIGH"

	highFloorThreshold = 12
)

// FloorBand groups a floor label by its leading number. Labels without a
// leading number (e.g. "PH", "LG") have no band.
func FloorBand(floor string) string {
	floor = strings.TrimSpace(floor)
	end := 0
	for end < len(floor) && floor[end] >= '0' && floor[end] <= '9' {
		end++
	}
	if end == 0 {
		return ""
	}
	n, err := strconv.Atoi(floor[:end])
	if err != nil {
		return ""
	}
	if n <= highFloorThreshold {
		return FloorBandLow
	}
	return FloorBandHigh
}

func keyOf(u models.UnitRecord) unitid.Key {
	return unitid.Key{
		PropertyCode: u.PropertyCode,
		TowerCode:    u.TowerCode,
		BuildingUnit: u.BuildingUnit,
	}
}

// FindUnit resolves id against the catalog. The raw building-unit label is
// tried first, then the canonical id, then the legacy "{property}-{unit}"
// form. The loose substring match only runs once every strict pass failed.
func FindUnit(units []models.UnitRecord, id string) (*models.UnitRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrUnitNotFound)
	}

	for i := range units {
		if strings.EqualFold(strings.TrimSpace(units[i].BuildingUnit), id) {
			return &units[i], nil
		}
	}
	for i := range units {
		if unitid.MatchesCanonicalOrLegacy(keyOf(units[i]), id) {
			return &units[i], nil
		}
	}
	for i := range units {
		if unitid.LooseLegacyMatch(keyOf(units[i]), id) {
			return &units[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, id)
}

// Filter narrows a catalog by exact, case-insensitive field values. Empty
// fields do not filter.
type Filter struct {
	Property string `form:"property"`
	Tower    string `form:"tower"`
	UnitType string `form:"unit_type"`
	Status   string `form:"status"`
}

func (f Filter) IsEmpty() bool {
	return f.Property == "" && f.Tower == "" && f.UnitType == "" && f.Status == ""
}

func (f Filter) Matches(u models.UnitRecord) bool {
	if f.Property != "" &&
		!strings.EqualFold(f.Property, u.PropertyCode) &&
		!strings.EqualFold(f.Property, u.PropertyName) {
		return false
	}
	if f.Tower != "" &&
		!strings.EqualFold(f.Tower, u.TowerCode) &&
		!strings.EqualFold(f.Tower, u.TowerName) {
		return false
	}
	if f.UnitType != "" && config.NormalizeUnitType(f.UnitType) != u.UnitType {
		return false
	}
	if f.Status != "" && !strings.EqualFold(f.Status, u.Status) {
		return false
	}
	return true
}

// Apply returns the units matching f, preserving order.
func (f Filter) Apply(units []models.UnitRecord) []models.UnitRecord {
	if f.IsEmpty() {
		return units
	}
	out := make([]models.UnitRecord, 0, len(units))
	for _, u := range units {
		if f.Matches(u) {
			out = append(out, u)
		}
	}
	return out
}
