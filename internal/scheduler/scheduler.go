package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"salesdesk/server/internal/metrics"
	"salesdesk/server/internal/models"
)

// CatalogFetcher builds the unit catalog.
type CatalogFetcher interface {
	Fetch(ctx context.Context) (*models.Catalog, error)
}

// Status is the outcome of the most recent sync check.
type Status struct {
	CheckedAt  time.Time       `json:"checked_at"`
	Units      int             `json:"units"`
	LastSynced *models.SyncLog `json:"last_synced"`
	Error      string          `json:"error,omitempty"`
}

// SyncMonitor periodically rebuilds the catalog to watch the upstream feed
// and publishes its size and sync time.
type SyncMonitor struct {
	fetcher CatalogFetcher
	logger  *logrus.Logger
	cron    *cron.Cron
	timeout time.Duration

	mu      sync.RWMutex
	running bool // Ensures checks do not overlap
	status  Status
	wg      sync.WaitGroup // Tracks the startup check
}

// NewSyncMonitor creates a new monitor
func NewSyncMonitor(fetcher CatalogFetcher, logger *logrus.Logger, timeout time.Duration) *SyncMonitor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &SyncMonitor{
		fetcher: fetcher,
		logger:  logger,
		cron:    cron.New(),
		timeout: timeout,
	}
}

// Start schedules the check with a cron spec (e.g. "@every 15m") and runs
// one check right away.
func (m *SyncMonitor) Start(spec string) error {
	if _, err := m.cron.AddFunc(spec, m.Check); err != nil {
		return fmt.Errorf("invalid sync monitor schedule %q: %w", spec, err)
	}
	m.cron.Start()
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.Check()
	}()

	m.logger.WithField("schedule", spec).Info("Sync monitor started")
	return nil
}

// Stop halts the schedule and waits for running checks to finish
func (m *SyncMonitor) Stop() {
	<-m.cron.Stop().Done()
	m.wg.Wait()
	m.logger.Info("Sync monitor stopped")
}

// Check runs a single aggregation pass. Overlapping calls are skipped.
func (m *SyncMonitor) Check() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		m.logger.Debug("Skipping sync check while another is in progress")
		return
	}
	m.running = true
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	status := Status{CheckedAt: time.Now()}
	catalog, err := m.fetcher.Fetch(ctx)
	if err != nil {
		status.Error = "upstream read failed"
		m.logger.WithError(err).Error("Sync check failed")
	} else {
		status.Units = len(catalog.Units)
		status.LastSynced = catalog.LastSynced

		var syncedAt time.Time
		fields := logrus.Fields{"units": status.Units}
		if catalog.LastSynced != nil {
			syncedAt = catalog.LastSynced.SyncedAt
			fields["last_synced_date"] = catalog.LastSynced.Date
			fields["last_synced_time"] = catalog.LastSynced.Time
			fields["source_file"] = catalog.LastSynced.SourceFile
		}
		metrics.SetCatalogState(status.Units, syncedAt)
		m.logger.WithFields(fields).Info("Sync check completed")
	}

	m.mu.Lock()
	m.status = status
	m.running = false
	m.mu.Unlock()
}

// Status returns the result of the most recent check
func (m *SyncMonitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}
