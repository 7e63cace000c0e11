// Package unitid derives the canonical identifier of an inventory unit and
// recognises the identifier forms used before it was introduced.
package unitid

import (
	"strings"
)

const separator = "__"

// NormalizeBuildingUnit trims the label and collapses internal whitespace
// runs into a single underscore.
func NormalizeBuildingUnit(buildingUnit string) string {
	return strings.Join(strings.Fields(buildingUnit), "_")
}

// Derive builds the canonical id from the property code, tower code and the
// building-unit label. Empty parts are left out along with their separator.
func Derive(propertyCode, towerCode, buildingUnit string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{
		strings.TrimSpace(propertyCode),
		strings.TrimSpace(towerCode),
		NormalizeBuildingUnit(buildingUnit),
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, separator)
}

// Legacy returns the pre-canonical "{property}-{unit}" identifier.
func Legacy(propertyCode, buildingUnit string) string {
	code := strings.TrimSpace(propertyCode)
	unit := NormalizeBuildingUnit(buildingUnit)
	switch {
	case code == "":
		return unit
	case unit == "":
		return code
	}
	return code + "-" + unit
}

// Key is the identity triple a unit id is derived from.
type Key struct {
	PropertyCode string
	TowerCode    string
	BuildingUnit string
}

// MatchesCanonicalOrLegacy reports whether candidate is the canonical id or
// the legacy hyphenated id of k.
func MatchesCanonicalOrLegacy(k Key, candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	if candidate == Derive(k.PropertyCode, k.TowerCode, k.BuildingUnit) {
		return true
	}
	return candidate == Legacy(k.PropertyCode, k.BuildingUnit)
}

// LooseLegacyMatch reports whether the normalized building unit of k occurs
// anywhere in candidate, ignoring case. A short label can match inside a
// longer one, so callers should only fall back to this after every strict
// match has failed.
func LooseLegacyMatch(k Key, candidate string) bool {
	unit := strings.ToLower(NormalizeBuildingUnit(k.BuildingUnit))
	if unit == "" {
		return false
	}
	return strings.Contains(strings.ToLower(candidate), unit)
}

// MatchesLegacyOrCanonical accepts the canonical id, the legacy id, or as a
// last resort a loose substring match of the building unit.
func MatchesLegacyOrCanonical(k Key, candidate string) bool {
	return MatchesCanonicalOrLegacy(k, candidate) || LooseLegacyMatch(k, candidate)
}
