package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"salesdesk/server/config"
	"salesdesk/server/internal/api"
	"salesdesk/server/internal/availability"
	"salesdesk/server/internal/database"
	"salesdesk/server/internal/rates"
	"salesdesk/server/internal/scheduler"
	"salesdesk/server/internal/sheets"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if err := config.LoadPricingDefaults(cfg.PricingDefaultsFile); err != nil {
		logger.WithError(err).Warn("Using built-in pricing defaults")
	}

	// Initialize database
	logger.WithField("driver", cfg.Database.Driver).Info("Opening metadata store")
	db, err := database.NewDatabase(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Initialize spreadsheet client
	sheetClient, err := sheets.NewClient(context.Background(), sheets.Options{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		CredentialsFile: cfg.Sheets.CredentialsFile,
		Endpoint:        cfg.Sheets.Endpoint,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize spreadsheet client")
	}

	aggregator := availability.NewAggregator(sheetClient, db, availability.Options{
		AvailabilityRange: cfg.Sheets.AvailabilityRange,
		LogRange:          cfg.Sheets.LogRange,
		Timeout:           cfg.AggregationTimeout(),
	}, logger)
	matcher := rates.NewMatcher(db, logger)

	handler := api.NewHandler(aggregator, matcher, db, logger)
	handler.SetPricingDefaultsFile(cfg.PricingDefaultsFile)

	if cfg.Monitor.Enabled {
		monitor := scheduler.NewSyncMonitor(aggregator, logger, cfg.AggregationTimeout())
		if err := monitor.Start(cfg.Monitor.Schedule); err != nil {
			logger.WithError(err).Fatal("Failed to start sync monitor")
		}
		defer monitor.Stop()
		handler.SetSyncMonitor(monitor)
	}

	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, handler, cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shut down")
	}
}
