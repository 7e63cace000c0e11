// Package rates selects the financing rate rule that applies to a unit.
package rates

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"salesdesk/server/internal/models"
)

var ErrInvalidInput = errors.New("invalid input")

// Store reads active rate rules.
type Store interface {
	GetActiveRates(ctx context.Context, projectCode, unitType string) ([]models.RateRecord, error)
}

type Matcher struct {
	store  Store
	logger *logrus.Logger
}

func NewMatcher(store Store, logger *logrus.Logger) *Matcher {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Matcher{store: store, logger: logger}
}

// Match finds the rate rule for a project, unit type and gross area. Codes are
// trimmed and upper-cased; area must be finite.
func (m *Matcher) Match(ctx context.Context, projectCode, unitType string, area float64) (models.RateMatch, error) {
	projectCode = strings.ToUpper(strings.TrimSpace(projectCode))
	unitType = strings.ToUpper(strings.TrimSpace(unitType))

	switch {
	case projectCode == "":
		return models.RateMatch{}, fmt.Errorf("%w: project_code is required", ErrInvalidInput)
	case unitType == "":
		return models.RateMatch{}, fmt.Errorf("%w: unit_type is required", ErrInvalidInput)
	case math.IsNaN(area) || math.IsInf(area, 0):
		return models.RateMatch{}, fmt.Errorf("%w: area must be a finite number", ErrInvalidInput)
	}

	candidates, err := m.store.GetActiveRates(ctx, projectCode, unitType)
	if err != nil {
		m.logger.WithError(err).WithFields(logrus.Fields{
			"project_code": projectCode,
			"unit_type":    unitType,
		}).Error("Failed to load financing rates")
		return models.RateMatch{}, fmt.Errorf("failed to load rates: %w", err)
	}

	best := SelectNarrowest(candidates, area)
	if best == nil {
		return models.RateMatch{Eligible: false}, nil
	}

	rate := best.MonthlyRate
	return models.RateMatch{
		Eligible:    true,
		MonthlyRate: &rate,
		MemoRef:     best.MemoRef,
		Match:       &models.AreaRange{Min: best.AreaMin, Max: best.AreaMax},
	}, nil
}

// Contains reports whether area falls inside the rule's bounds. A nil bound
// is open.
func Contains(r models.RateRecord, area float64) bool {
	if r.AreaMin != nil && area < *r.AreaMin {
		return false
	}
	if r.AreaMax != nil && area > *r.AreaMax {
		return false
	}
	return true
}

// Span is the width of the rule's area range; open ranges are infinite.
func Span(r models.RateRecord) float64 {
	if r.AreaMin == nil || r.AreaMax == nil {
		return math.Inf(1)
	}
	return *r.AreaMax - *r.AreaMin
}

func lowerBound(r models.RateRecord) float64 {
	if r.AreaMin == nil {
		return math.Inf(-1)
	}
	return *r.AreaMin
}

// SelectNarrowest returns the active, containing rule with the smallest span.
// Equal spans go to the lowest area_min, then to the earlier rule in the
// input. Returns nil when nothing qualifies.
func SelectNarrowest(candidates []models.RateRecord, area float64) *models.RateRecord {
	qualifying := make([]models.RateRecord, 0, len(candidates))
	for _, c := range candidates {
		if c.IsActive && Contains(c, area) {
			qualifying = append(qualifying, c)
		}
	}
	if len(qualifying) == 0 {
		return nil
	}

	sort.SliceStable(qualifying, func(i, j int) bool {
		si, sj := Span(qualifying[i]), Span(qualifying[j])
		if si != sj {
			return si < sj
		}
		return lowerBound(qualifying[i]) < lowerBound(qualifying[j])
	})
	return &qualifying[0]
}
