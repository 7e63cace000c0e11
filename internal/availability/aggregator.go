// Package availability builds the unit catalog from the spreadsheet feed and
// the property/tower directories.
package availability

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"salesdesk/server/config"
	"salesdesk/server/internal/metrics"
	"salesdesk/server/internal/models"
	"salesdesk/server/internal/money"
	"salesdesk/server/internal/sheets"
	"salesdesk/server/internal/unitid"
)

var (
	ErrUpstreamRead = errors.New("upstream read failed")
	ErrUnitNotFound = errors.New("unit not found")
)

// MetadataStore reads the property and tower directories.
type MetadataStore interface {
	GetPropertyMeta(ctx context.Context) ([]models.PropertyMeta, error)
	GetTowerMeta(ctx context.Context) ([]models.TowerMeta, error)
}

// Options names the spreadsheet ranges and bounds the upstream reads.
type Options struct {
	AvailabilityRange string
	LogRange          string
	Timeout           time.Duration
}

// Aggregator merges the availability sheet with relational metadata.
type Aggregator struct {
	source sheets.Source
	store  MetadataStore
	opts   Options
	logger *logrus.Logger
}

func NewAggregator(source sheets.Source, store MetadataStore, opts Options, logger *logrus.Logger) *Aggregator {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}

	return &Aggregator{
		source: source,
		store:  store,
		opts:   opts,
		logger: logger,
	}
}

// Fetch reads both spreadsheet ranges and both directories concurrently and
// returns the enriched catalog. Any failed read aborts the whole pass.
func (a *Aggregator) Fetch(ctx context.Context) (*models.Catalog, error) {
	start := time.Now()
	catalog, err := a.fetch(ctx)
	metrics.ObserveAggregation(time.Since(start), err)
	return catalog, err
}

func (a *Aggregator) fetch(ctx context.Context) (*models.Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	var (
		unitTable  sheets.Table
		logTable   sheets.Table
		properties []models.PropertyMeta
		towers     []models.TowerMeta
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		unitTable, err = a.source.ReadRange(gctx, a.opts.AvailabilityRange)
		if err != nil {
			return fmt.Errorf("availability range %q: %w", a.opts.AvailabilityRange, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		logTable, err = a.source.ReadRange(gctx, a.opts.LogRange)
		if err != nil {
			return fmt.Errorf("log range %q: %w", a.opts.LogRange, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		properties, err = a.store.GetPropertyMeta(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		towers, err = a.store.GetTowerMeta(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"availability_range": a.opts.AvailabilityRange,
			"log_range":          a.opts.LogRange,
		}).Error("Failed to read availability sources")
		return nil, fmt.Errorf("%w: %w", ErrUpstreamRead, err)
	}

	dir := newDirectory(properties, towers)
	records := unitTable.Records()
	units := make([]models.UnitRecord, 0, len(records))
	for _, rec := range records {
		units = append(units, dir.enrich(rec))
	}

	lastSynced := ParseSyncLog(logTable.Last())

	a.logger.WithFields(logrus.Fields{
		"units":      len(units),
		"properties": len(properties),
		"towers":     len(towers),
	}).Info("Built availability catalog")

	return &models.Catalog{Units: units, LastSynced: lastSynced}, nil
}

// FindUnit fetches the catalog and looks up a single unit.
func (a *Aggregator) FindUnit(ctx context.Context, id string) (*models.UnitRecord, error) {
	catalog, err := a.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return FindUnit(catalog.Units, id)
}

// Spreadsheet column names, with accepted alternates.
var (
	colProperty     = []string{"Property", "Property Code", "Project"}
	colTower        = []string{"Tower", "Tower Code"}
	colBuildingUnit = []string{"Building Unit", "Unit", "Unit No."}
	colFloor        = []string{"Floor"}
	colUnitType     = []string{"Unit Type", "Type"}
	colStatus       = []string{"Status"}
	colGrossArea    = []string{"Gross Area", "Gross Area (sqm)", "GFA"}
	colAmenities    = []string{"Amenities"}
	colFacing       = []string{"Facing"}
	colRFODate      = []string{"RFO Date", "RFO"}
	colListPrice    = []string{"List Price", "Price"}
	colPricePerSqm  = []string{"Price/SQM", "Price per SQM", "Price Per Sqm"}
)

var propertyCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,5}$`)

type directory struct {
	byCode  map[string]models.PropertyMeta
	byName  map[string]models.PropertyMeta
	towers  map[string]models.TowerMeta
	byTower map[string]models.TowerMeta
}

func newDirectory(properties []models.PropertyMeta, towers []models.TowerMeta) *directory {
	d := &directory{
		byCode:  make(map[string]models.PropertyMeta, len(properties)),
		byName:  make(map[string]models.PropertyMeta, len(properties)),
		towers:  make(map[string]models.TowerMeta, len(towers)),
		byTower: make(map[string]models.TowerMeta, len(towers)),
	}
	for _, p := range properties {
		d.byCode[strings.TrimSpace(p.Code)] = p
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if _, exists := d.byName[name]; !exists && name != "" {
			d.byName[name] = p
		}
	}
	for _, t := range towers {
		d.towers[towerKey(t.PropertyCode, t.TowerCode)] = t
		code := strings.TrimSpace(t.TowerCode)
		if _, exists := d.byTower[code]; !exists {
			d.byTower[code] = t
		}
	}
	return d
}

func towerKey(propertyCode, towerCode string) string {
	return strings.TrimSpace(propertyCode) + "|" + strings.TrimSpace(towerCode)
}

// resolveProperty tries a short upper-case alphanumeric value as a code first,
// then any value as a property name. Unknown values are kept verbatim.
func (d *directory) resolveProperty(raw string) (code string, meta *models.PropertyMeta) {
	raw = strings.TrimSpace(raw)
	if propertyCodePattern.MatchString(raw) {
		if p, ok := d.byCode[raw]; ok {
			return raw, &p
		}
	}
	if p, ok := d.byName[strings.ToLower(raw)]; ok {
		return p.Code, &p
	}
	return raw, nil
}

func (d *directory) resolveTower(propertyCode, towerCode string) string {
	if towerCode == "" {
		return ""
	}
	if t, ok := d.towers[towerKey(propertyCode, towerCode)]; ok {
		return t.TowerName
	}
	if t, ok := d.byTower[towerCode]; ok {
		return t.TowerName
	}
	return ""
}

func (d *directory) enrich(rec sheets.Record) models.UnitRecord {
	rawProperty := rec.Get(colProperty...)
	code, meta := d.resolveProperty(rawProperty)

	unit := models.UnitRecord{
		PropertyCode: code,
		PropertyName: rawProperty,
		TowerCode:    rec.Get(colTower...),
		BuildingUnit: rec.Get(colBuildingUnit...),
		Floor:        rec.Get(colFloor...),
		UnitType:     config.NormalizeUnitType(rec.Get(colUnitType...)),
		Status:       rec.Get(colStatus...),
		GrossAreaSqm: money.Normalize(rec.Get(colGrossArea...)),
		Amenities:    rec.Get(colAmenities...),
		Facing:       rec.Get(colFacing...),
		RFODate:      rec.Get(colRFODate...),
		ListPrice:    money.Normalize(rec.Get(colListPrice...)),
		PricePerSqm:  money.Normalize(rec.Get(colPricePerSqm...)),
	}
	if meta != nil {
		unit.PropertyName = meta.Name
		unit.City = meta.City
		unit.Address = meta.Address
	}
	unit.TowerName = d.resolveTower(unit.PropertyCode, unit.TowerCode)
	unit.FloorBand = FloorBand(unit.Floor)
	unit.UnitID = unitid.Derive(unit.PropertyCode, unit.TowerCode, unit.BuildingUnit)
	return unit
}

const syncLogLayout = "2/1/2006 15:04:05"

// ParseSyncLog turns the latest process-log row (timestamp, unused, file name)
// into a readable sync stamp. A timestamp that does not parse is passed
// through split on whitespace. A nil or empty row yields nil.
func ParseSyncLog(row []string) *models.SyncLog {
	if len(row) == 0 {
		return nil
	}

	stamp := strings.TrimSpace(row[0])
	log := &models.SyncLog{}
	if len(row) > 2 {
		log.SourceFile = strings.TrimSpace(row[2])
	}
	if stamp == "" {
		if log.SourceFile == "" {
			return nil
		}
		return log
	}

	if t, err := time.Parse(syncLogLayout, stamp); err == nil {
		log.Date = t.Format("January 2, 2006")
		log.Time = t.Format("3:04:05 PM")
		log.SyncedAt = t
		return log
	}

	parts := strings.Fields(stamp)
	log.Date = parts[0]
	if len(parts) > 1 {
		log.Time = strings.Join(parts[1:], " ")
	}
	return log
}
