package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"salesdesk/server/internal/models"
)

var (
	pricingDefaults = FallbackPricingDefaults()
	pricingLock     sync.RWMutex
)

// FallbackPricingDefaults returns the built-in default pricing parameters
func FallbackPricingDefaults() models.PricingInputs {
	return models.PricingInputs{
		DiscountPct:    0,
		DownPaymentPct: 20,
		MonthsToPay:    36,
		ReservationFee: 20000,
		ClosingFeePct:  10.5,
		Rate15Yr:       6,
		Rate20Yr:       6,
	}
}

// LoadPricingDefaults loads the default pricing parameters from file.
// Fields missing from the file keep their built-in values.
func LoadPricingDefaults(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read pricing defaults: %w", err)
	}

	inputs := FallbackPricingDefaults()
	if err := json.Unmarshal(data, &inputs); err != nil {
		return fmt.Errorf("failed to parse pricing defaults: %w", err)
	}
	if inputs.MonthsToPay < 1 {
		return fmt.Errorf("invalid pricing defaults: months_to_pay must be at least 1")
	}

	pricingLock.Lock()
	pricingDefaults = inputs
	pricingLock.Unlock()
	return nil
}

// SavePricingDefaults writes the given parameters to file and makes them current
func SavePricingDefaults(path string, inputs models.PricingInputs) error {
	if inputs.MonthsToPay < 1 {
		return fmt.Errorf("invalid pricing defaults: months_to_pay must be at least 1")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := json.MarshalIndent(inputs, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal pricing defaults: %w", err)
	}

	if err := os.WriteFile(absPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write pricing defaults: %w", err)
	}

	pricingLock.Lock()
	pricingDefaults = inputs
	pricingLock.Unlock()
	return nil
}

// GetPricingDefaults returns a copy of the current default pricing parameters
func GetPricingDefaults() models.PricingInputs {
	pricingLock.RLock()
	defer pricingLock.RUnlock()
	return pricingDefaults
}

// ResetPricingDefaults restores the built-in defaults
func ResetPricingDefaults() {
	pricingLock.Lock()
	pricingDefaults = FallbackPricingDefaults()
	pricingLock.Unlock()
}
