package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salesdesk/server/config"
	"salesdesk/server/internal/availability"
	"salesdesk/server/internal/models"
	"salesdesk/server/internal/rates"
	"salesdesk/server/internal/scheduler"
)

// MockCatalog is a mock implementation of CatalogService
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Fetch(ctx context.Context) (*models.Catalog, error) {
	args := m.Called(ctx)
	catalog, _ := args.Get(0).(*models.Catalog)
	return catalog, args.Error(1)
}

// MockRates is a mock implementation of RateService
type MockRates struct {
	mock.Mock
}

func (m *MockRates) Match(ctx context.Context, projectCode, unitType string, area float64) (models.RateMatch, error) {
	args := m.Called(ctx, projectCode, unitType, area)
	return args.Get(0).(models.RateMatch), args.Error(1)
}

// MockPinger is a mock implementation of Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func testCatalog() *models.Catalog {
	return &models.Catalog{
		Units: []models.UnitRecord{
			{UnitID: "AGP__AGP-00A__C-Amina_1204", PropertyCode: "AGP", TowerCode: "AGP-00A", BuildingUnit: "C-Amina 1204", UnitType: "1BR", Status: "Avail.", ListPrice: 3_000_000},
			{UnitID: "AVR__T2__R-0815", PropertyCode: "AVR", TowerCode: "T2", BuildingUnit: "R-0815", UnitType: "2BR", Status: "OnHold", ListPrice: 2_000_000},
		},
		LastSynced: &models.SyncLog{Date: "March 15, 2025", Time: "2:30:05 PM", SourceFile: "inventory.xlsx"},
	}
}

func setupRouter(catalog CatalogService, rateService RateService, store Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, NewHandler(catalog, rateService, store, logrus.New()), []string{"http://localhost:3000"})
	return router
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestGetAvailability(t *testing.T) {
	catalog := &MockCatalog{}
	catalog.On("Fetch", mock.Anything).Return(testCatalog(), nil)
	router := setupRouter(catalog, &MockRates{}, nil)

	w := doRequest(router, http.MethodGet, "/api/availability", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 2)
	latest := body["latestLog"].(map[string]interface{})
	assert.Equal(t, "inventory.xlsx", latest["source_file"])
}

func TestGetAvailability_Filtered(t *testing.T) {
	catalog := &MockCatalog{}
	catalog.On("Fetch", mock.Anything).Return(testCatalog(), nil)
	router := setupRouter(catalog, &MockRates{}, nil)

	w := doRequest(router, http.MethodGet, "/api/availability?status=onhold", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "AVR__T2__R-0815", data[0].(map[string]interface{})["unit_id"])
}

func TestGetAvailability_UpstreamFailure(t *testing.T) {
	catalog := &MockCatalog{}
	catalog.On("Fetch", mock.Anything).Return(nil, fmt.Errorf("%w: sheets quota exceeded for key abc", availability.ErrUpstreamRead))
	router := setupRouter(catalog, &MockRates{}, nil)

	w := doRequest(router, http.MethodGet, "/api/availability", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to fetch availability", body["error"])
	assert.NotContains(t, w.Body.String(), "quota")
}

func TestGetUnit(t *testing.T) {
	catalog := &MockCatalog{}
	catalog.On("Fetch", mock.Anything).Return(testCatalog(), nil)
	router := setupRouter(catalog, &MockRates{}, nil)

	w := doRequest(router, http.MethodGet, "/api/availability/c-amina%201204", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "AGP__AGP-00A__C-Amina_1204", data["unit_id"])

	w = doRequest(router, http.MethodGet, "/api/availability/Z-9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unit not found", body["error"])
}

func TestGetUnit_UpstreamFailure(t *testing.T) {
	catalog := &MockCatalog{}
	catalog.On("Fetch", mock.Anything).Return(nil, availability.ErrUpstreamRead)
	router := setupRouter(catalog, &MockRates{}, nil)

	w := doRequest(router, http.MethodGet, "/api/availability/R-0815", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetRate(t *testing.T) {
	rate := 6.0
	min, max := 50.0, 60.0
	rateService := &MockRates{}
	rateService.On("Match", mock.Anything, "AGP", "1BR", 55.0).Return(models.RateMatch{
		Eligible:    true,
		MonthlyRate: &rate,
		MemoRef:     "MEMO-7",
		Match:       &models.AreaRange{Min: &min, Max: &max},
	}, nil)
	router := setupRouter(&MockCatalog{}, rateService, nil)

	w := doRequest(router, http.MethodGet, "/api/rate?project_code=AGP&unit_type=1BR&area=55", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["eligible"])
	assert.Equal(t, 6.0, body["monthly_rate"])
	assert.Equal(t, "MEMO-7", body["memo_ref"])
	rateService.AssertExpectations(t)
}

func TestGetRate_NotEligible(t *testing.T) {
	rateService := &MockRates{}
	rateService.On("Match", mock.Anything, "AGP", "1BR", 200.0).Return(models.RateMatch{Eligible: false}, nil)
	router := setupRouter(&MockCatalog{}, rateService, nil)

	w := doRequest(router, http.MethodGet, "/api/rate?project_code=AGP&unit_type=1BR&area=200", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"eligible": false}`, w.Body.String())
}

func TestGetRate_BadRequest(t *testing.T) {
	rateService := &MockRates{}
	router := setupRouter(&MockCatalog{}, rateService, nil)

	paths := []string{
		"/api/rate?unit_type=1BR&area=55",
		"/api/rate?project_code=AGP&area=55",
		"/api/rate?project_code=AGP&unit_type=1BR",
		"/api/rate?project_code=AGP&unit_type=1BR&area=abc",
		"/api/rate?project_code=AGP&unit_type=1BR&area=NaN",
	}
	for _, path := range paths {
		w := doRequest(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	rateService.AssertNotCalled(t, "Match", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRate_InvalidInputFromMatcher(t *testing.T) {
	rateService := &MockRates{}
	rateService.On("Match", mock.Anything, " ", "1BR", 30.0).Return(models.RateMatch{}, fmt.Errorf("%w: project_code is required", rates.ErrInvalidInput))
	router := setupRouter(&MockCatalog{}, rateService, nil)

	w := doRequest(router, http.MethodGet, "/api/rate?project_code=%20&unit_type=1BR&area=30", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRate_StoreFailure(t *testing.T) {
	rateService := &MockRates{}
	rateService.On("Match", mock.Anything, "AGP", "1BR", 30.0).Return(models.RateMatch{}, errors.New("db down"))
	router := setupRouter(&MockCatalog{}, rateService, nil)

	w := doRequest(router, http.MethodGet, "/api/rate?project_code=AGP&unit_type=1BR&area=30", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestComputePricing(t *testing.T) {
	config.ResetPricingDefaults()
	router := setupRouter(&MockCatalog{}, &MockRates{}, nil)

	w := doRequest(router, http.MethodPost, "/api/pricing", map[string]interface{}{
		"list_price": 3_000_000,
		"inputs": map[string]interface{}{
			"discount_pct":     5,
			"down_payment_pct": 20,
			"reservation_fee":  20_000,
			"months_to_pay":    36,
			"closing_fee_pct":  10.5,
			"rate_15yr":        6,
			"rate_20yr":        6,
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]interface{})
	assert.InDelta(t, 2_850_000, data["total_contract_price"], 1e-6)
	assert.InDelta(t, 550_000, data["net_down_payment"], 1e-6)
	assert.InDelta(t, 2_280_000, data["bank_financed_balance"], 1e-6)
}

func TestComputePricing_UsesDefaults(t *testing.T) {
	config.ResetPricingDefaults()
	router := setupRouter(&MockCatalog{}, &MockRates{}, nil)

	w := doRequest(router, http.MethodPost, "/api/pricing", map[string]interface{}{
		"list_price": 1_000_000,
		"inputs":     map[string]interface{}{"discount_pct": 10},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	inputs := body["inputs"].(map[string]interface{})
	assert.Equal(t, 10.0, inputs["discount_pct"])
	assert.Equal(t, 36.0, inputs["months_to_pay"])
	data := body["data"].(map[string]interface{})
	assert.InDelta(t, 900_000, data["total_contract_price"], 1e-6)
}

func TestComputePricing_Invalid(t *testing.T) {
	config.ResetPricingDefaults()
	router := setupRouter(&MockCatalog{}, &MockRates{}, nil)

	w := doRequest(router, http.MethodPost, "/api/pricing", map[string]interface{}{
		"list_price": 1_000_000,
		"inputs":     map[string]interface{}{"months_to_pay": 0},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/pricing", map[string]interface{}{"list_price": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComputeUnitPricing(t *testing.T) {
	config.ResetPricingDefaults()
	catalog := &MockCatalog{}
	catalog.On("Fetch", mock.Anything).Return(testCatalog(), nil)
	router := setupRouter(catalog, &MockRates{}, nil)

	w := doRequest(router, http.MethodPost, "/api/availability/AGP__AGP-00A__C-Amina_1204/pricing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 3_000_000.0, data["list_price"])
	// Defaults: 20% down, 20,000 reservation
	assert.InDelta(t, 580_000, data["net_down_payment"], 1e-6)

	w = doRequest(router, http.MethodPost, "/api/availability/AGP__AGP-00A__C-Amina_1204/pricing", map[string]interface{}{"down_payment_pct": 10})
	require.Equal(t, http.StatusOK, w.Code)
	data = decode(t, w)["data"].(map[string]interface{})
	assert.InDelta(t, 280_000, data["net_down_payment"], 1e-6)

	w = doRequest(router, http.MethodPost, "/api/availability/nope/pricing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComputeSchedule(t *testing.T) {
	router := setupRouter(&MockCatalog{}, &MockRates{}, nil)

	w := doRequest(router, http.MethodPost, "/api/pricing/schedule", map[string]interface{}{
		"principal":   1_000_000,
		"annual_rate": 6,
		"years":       20,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.InDelta(t, 7164.31, body["monthly_payment"], 0.005)
	assert.Len(t, body["data"], 240)

	w = doRequest(router, http.MethodPost, "/api/pricing/schedule", map[string]interface{}{"principal": 1000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPricingDefaults(t *testing.T) {
	config.ResetPricingDefaults()
	router := setupRouter(&MockCatalog{}, &MockRates{}, nil)

	w := doRequest(router, http.MethodGet, "/api/pricing/defaults", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 10.5, data["closing_fee_pct"])
}

func TestUpdatePricingDefaults(t *testing.T) {
	config.ResetPricingDefaults()
	t.Cleanup(config.ResetPricingDefaults)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(&MockCatalog{}, &MockRates{}, nil, logrus.New())
	path := filepath.Join(t.TempDir(), "pricing.json")
	handler.SetPricingDefaultsFile(path)
	SetupRoutes(router, handler, nil)

	w := doRequest(router, http.MethodPut, "/api/pricing/defaults", map[string]interface{}{
		"down_payment_pct": 15,
		"months_to_pay":    24,
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 15.0, data["down_payment_pct"])
	assert.Equal(t, 10.5, data["closing_fee_pct"])

	// New defaults apply to later computations and survive a reload
	assert.Equal(t, 24, config.GetPricingDefaults().MonthsToPay)
	config.ResetPricingDefaults()
	require.NoError(t, config.LoadPricingDefaults(path))
	assert.Equal(t, 15.0, config.GetPricingDefaults().DownPaymentPct)

	w = doRequest(router, http.MethodPut, "/api/pricing/defaults", map[string]interface{}{"months_to_pay": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 24, config.GetPricingDefaults().MonthsToPay)
}

func TestUpdatePricingDefaults_NoFile(t *testing.T) {
	config.ResetPricingDefaults()
	router := setupRouter(&MockCatalog{}, &MockRates{}, nil)

	w := doRequest(router, http.MethodPut, "/api/pricing/defaults", map[string]interface{}{"discount_pct": 5})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 0.0, config.GetPricingDefaults().DiscountPct)
}

func TestGetUnitTypes(t *testing.T) {
	router := setupRouter(&MockCatalog{}, &MockRates{}, nil)

	w := doRequest(router, http.MethodGet, "/api/unit-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "data": ["STUDIO", "1BR", "2BR", "3BR", "4BR", "LOFT"]}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	store := &MockPinger{}
	store.On("Ping", mock.Anything).Return(nil).Once()
	store.On("Ping", mock.Anything).Return(errors.New("down")).Once()
	router := setupRouter(&MockCatalog{}, &MockRates{}, store)

	w := doRequest(router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupRouter(&MockCatalog{}, &MockRates{}, nil)
	doRequest(router, http.MethodGet, "/api/pricing/defaults", nil)

	w := doRequest(router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

type staticStatus scheduler.Status

func (s staticStatus) Status() scheduler.Status { return scheduler.Status(s) }

func TestGetSyncStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(&MockCatalog{}, &MockRates{}, nil, logrus.New())
	SetupRoutes(router, handler, nil)

	w := doRequest(router, http.MethodGet, "/api/sync/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	handler.SetSyncMonitor(staticStatus{Units: 42})
	w = doRequest(router, http.MethodGet, "/api/sync/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 42.0, data["units"])
}
