package api

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"salesdesk/server/config"
	"salesdesk/server/internal/availability"
	"salesdesk/server/internal/models"
	"salesdesk/server/internal/pricing"
	"salesdesk/server/internal/rates"
	"salesdesk/server/internal/scheduler"
)

// CatalogService builds the unit catalog.
type CatalogService interface {
	Fetch(ctx context.Context) (*models.Catalog, error)
}

// RateService answers financing rate eligibility queries.
type RateService interface {
	Match(ctx context.Context, projectCode, unitType string, area float64) (models.RateMatch, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SyncStatusProvider reports the latest background sync check.
type SyncStatusProvider interface {
	Status() scheduler.Status
}

type Handler struct {
	catalog      CatalogService
	rates        RateService
	store        Pinger
	monitor      SyncStatusProvider
	defaultsFile string
	logger       *logrus.Logger
}

type RateQuery struct {
	ProjectCode string `form:"project_code" binding:"required"`
	UnitType    string `form:"unit_type" binding:"required"`
	Area        string `form:"area" binding:"required"`
}

type PricingRequest struct {
	ListPrice float64              `json:"list_price" binding:"gte=0"`
	Inputs    models.PricingInputs `json:"inputs"`
}

type ScheduleRequest struct {
	Principal  float64 `json:"principal" binding:"gte=0"`
	AnnualRate float64 `json:"annual_rate" binding:"gte=0"`
	Years      int     `json:"years" binding:"required,gte=1,lte=40"`
}

func NewHandler(catalog CatalogService, rateService RateService, store Pinger, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		catalog: catalog,
		rates:   rateService,
		store:   store,
		logger:  logger,
	}
}

func (h *Handler) SetSyncMonitor(monitor SyncStatusProvider) {
	h.monitor = monitor
}

// SetPricingDefaultsFile sets where updated pricing defaults are persisted.
func (h *Handler) SetPricingDefaultsFile(path string) {
	h.defaultsFile = path
}

func failure(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func (h *Handler) GetAvailability(c *gin.Context) {
	var filter availability.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.logger.WithError(err).Warn("Failed to parse availability filter")
	}

	catalog, err := h.catalog.Fetch(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch availability")
		failure(c, http.StatusInternalServerError, "Failed to fetch availability")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      filter.Apply(catalog.Units),
		"latestLog": catalog.LastSynced,
	})
}

func (h *Handler) lookupUnit(c *gin.Context) (*models.UnitRecord, bool) {
	unitID := c.Param("unitId")

	catalog, err := h.catalog.Fetch(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).WithField("unit_id", unitID).Error("Failed to fetch availability for unit lookup")
		failure(c, http.StatusInternalServerError, "Failed to fetch availability")
		return nil, false
	}

	unit, err := availability.FindUnit(catalog.Units, unitID)
	if err != nil {
		if errors.Is(err, availability.ErrUnitNotFound) {
			failure(c, http.StatusNotFound, "Unit not found")
			return nil, false
		}
		h.logger.WithError(err).WithField("unit_id", unitID).Error("Failed to look up unit")
		failure(c, http.StatusInternalServerError, "Failed to look up unit")
		return nil, false
	}
	return unit, true
}

func (h *Handler) GetUnit(c *gin.Context) {
	unit, ok := h.lookupUnit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": unit})
}

func (h *Handler) GetRate(c *gin.Context) {
	var query RateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		failure(c, http.StatusBadRequest, "project_code, unit_type and area are required")
		return
	}

	area, err := strconv.ParseFloat(query.Area, 64)
	if err != nil || math.IsNaN(area) || math.IsInf(area, 0) {
		failure(c, http.StatusBadRequest, "area must be a number")
		return
	}

	match, err := h.rates.Match(c.Request.Context(), query.ProjectCode, query.UnitType, area)
	if err != nil {
		if errors.Is(err, rates.ErrInvalidInput) {
			failure(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).WithFields(logrus.Fields{
			"project_code": query.ProjectCode,
			"unit_type":    query.UnitType,
			"area":         area,
		}).Error("Failed to match financing rate")
		failure(c, http.StatusInternalServerError, "Failed to match financing rate")
		return
	}

	c.JSON(http.StatusOK, match)
}

func (h *Handler) GetPricingDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": config.GetPricingDefaults()})
}

// UpdatePricingDefaults replaces the default pricing parameters. Fields left
// out of the body keep their current values.
func (h *Handler) UpdatePricingDefaults(c *gin.Context) {
	if h.defaultsFile == "" {
		failure(c, http.StatusServiceUnavailable, "Pricing defaults are read-only")
		return
	}

	inputs := config.GetPricingDefaults()
	if err := c.ShouldBindJSON(&inputs); err != nil {
		h.logger.WithError(err).Warn("Invalid pricing defaults")
		failure(c, http.StatusBadRequest, "Invalid pricing parameters")
		return
	}

	if err := config.SavePricingDefaults(h.defaultsFile, inputs); err != nil {
		h.logger.WithError(err).WithField("path", h.defaultsFile).Error("Failed to save pricing defaults")
		failure(c, http.StatusInternalServerError, "Failed to save pricing defaults")
		return
	}

	h.logger.WithField("path", h.defaultsFile).Info("Pricing defaults updated")
	c.JSON(http.StatusOK, gin.H{"success": true, "data": inputs})
}

func (h *Handler) GetUnitTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": config.GetUnitTypeNames()})
}

func (h *Handler) ComputePricing(c *gin.Context) {
	req := PricingRequest{Inputs: config.GetPricingDefaults()}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid pricing request")
		failure(c, http.StatusBadRequest, "Invalid pricing parameters")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    pricing.Compute(req.ListPrice, req.Inputs),
		"inputs":  req.Inputs,
	})
}

// ComputeUnitPricing prices a catalog unit. The body holds PricingInputs
// overrides; an empty body prices with the defaults.
func (h *Handler) ComputeUnitPricing(c *gin.Context) {
	inputs := config.GetPricingDefaults()
	if err := c.ShouldBindJSON(&inputs); err != nil && !errors.Is(err, io.EOF) {
		h.logger.WithError(err).Warn("Invalid pricing request")
		failure(c, http.StatusBadRequest, "Invalid pricing parameters")
		return
	}

	unit, ok := h.lookupUnit(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    pricing.Compute(unit.ListPrice, inputs),
		"inputs":  inputs,
		"unit":    unit,
	})
}

func (h *Handler) ComputeSchedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "Invalid schedule parameters")
		return
	}

	entries, err := pricing.Schedule(req.Principal, req.AnnualRate, req.Years)
	if err != nil {
		failure(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"monthly_payment": pricing.Amortize(req.Principal, req.AnnualRate, req.Years),
		"data":            entries,
	})
}

func (h *Handler) Health(c *gin.Context) {
	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			h.logger.WithError(err).Error("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetSyncStatus(c *gin.Context) {
	if h.monitor == nil {
		failure(c, http.StatusServiceUnavailable, "Sync monitor is disabled")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.monitor.Status()})
}
