package config

import (
	"strings"
)

// UnitType represents a unit layout category
type UnitType struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

// SupportedUnitTypes lists the unit layouts carried in the inventory feed
var SupportedUnitTypes = []UnitType{
	{Name: "STUDIO", Aliases: []string{"STU", "STUDIO UNIT"}},
	{Name: "1BR", Aliases: []string{"1 BR", "1-BR", "1BDR", "ONE BEDROOM", "1 BEDROOM"}},
	{Name: "2BR", Aliases: []string{"2 BR", "2-BR", "2BDR", "TWO BEDROOM", "2 BEDROOM"}},
	{Name: "3BR", Aliases: []string{"3 BR", "3-BR", "3BDR", "THREE BEDROOM", "3 BEDROOM"}},
	{Name: "4BR", Aliases: []string{"4 BR", "4-BR", "4BDR", "FOUR BEDROOM", "4 BEDROOM"}},
	{Name: "LOFT", Aliases: []string{"LOFT UNIT"}},
}

// GetUnitTypeNames returns a list of supported unit type names
func GetUnitTypeNames() []string {
	names := make([]string, len(SupportedUnitTypes))
	for i, ut := range SupportedUnitTypes {
		names[i] = ut.Name
	}
	return names
}

// GetUnitTypeByName returns a unit type by its name or one of its aliases
func GetUnitTypeByName(name string) *UnitType {
	key := strings.ToUpper(strings.Join(strings.Fields(name), " "))
	if key == "" {
		return nil
	}
	for _, ut := range SupportedUnitTypes {
		if ut.Name == key {
			return &ut
		}
		for _, alias := range ut.Aliases {
			if alias == key {
				return &ut
			}
		}
	}
	return nil
}

// NormalizeUnitType maps a raw unit type label onto its canonical name.
// Unknown labels are returned trimmed and upper-cased.
func NormalizeUnitType(raw string) string {
	if ut := GetUnitTypeByName(raw); ut != nil {
		return ut.Name
	}
	return strings.ToUpper(strings.TrimSpace(raw))
}
