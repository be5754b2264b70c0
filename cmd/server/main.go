package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"compstone/server/config"
	"compstone/server/internal/api"
	"compstone/server/internal/database"
	"compstone/server/internal/geocoding"
	"compstone/server/internal/importer"
	"compstone/server/internal/processor"
	"compstone/server/internal/queue"
	"compstone/server/internal/scheduler"
	"compstone/server/internal/valuation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dbPath := cfg.Server.DatabasePath
	if !filepath.IsAbs(dbPath) {
		currentDir, err := os.Getwd()
		if err != nil {
			logger.WithError(err).Fatal("Failed to get current directory")
		}
		dbPath = filepath.Join(currentDir, dbPath)
	}
	logger.Infof("Using database at: %s", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}

	// Initialize database
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Load amenity landmarks for the regression study endpoints; missing
	// config is not fatal
	if err := config.LoadAmenityConfig(); err != nil {
		logger.WithError(err).Warn("No amenity configuration loaded")
	}

	// Import comps from CSV if one is configured
	if cfg.Server.CompsCSV != "" {
		gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
		if err != nil {
			logger.WithError(err).Fatal("Failed to open GORM connection")
		}

		compQueue := queue.NewCompQueue(cfg.BatchProcessing.MaxBatchSize, logger)
		batchProcessor := processor.NewBatchProcessor(gormDB, compQueue, cfg, logger)
		batchProcessor.Start()

		if err := importer.ImportFile(cfg.Server.CompsCSV, compQueue, cfg.BatchProcessing.MaxBatchSize, logger); err != nil {
			logger.WithError(err).Error("Failed to import comps CSV")
		}

		// Let the processor drain the queue before sessions load comps
		for compQueue.Len() > 0 {
			time.Sleep(100 * time.Millisecond)
		}
		time.Sleep(time.Second)
		batchProcessor.Stop()
		compQueue.Close()
	}

	// Geocode comps that are missing coordinates
	cacheDir := filepath.Join(os.TempDir(), "compstone", "geocode_cache")
	geocoder := geocoding.NewGeocoder(logger, cacheDir)

	logger.Info("Starting initial geocoding of comps without coordinates...")
	if err := db.UpdateMissingCoordinates(geocoder); err != nil {
		logger.WithError(err).Error("Failed to update coordinates")
	}

	// Open the default valuation session
	manager, err := api.NewManager(db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize session manager")
	}
	if manager.DefaultID != "" && cfg.AppreciationRate() != valuation.DefaultAppreciationRate {
		err := manager.Do(manager.DefaultID, func(s *valuation.Session) error {
			s.SetRate(cfg.AppreciationRate())
			return nil
		})
		if err != nil {
			logger.WithError(err).Error("Failed to apply configured appreciation rate")
		}
	}

	// Nightly revaluation keeps appreciation adjustments current
	revalScheduler := scheduler.NewScheduler(manager, logger)
	revalScheduler.Start()
	defer revalScheduler.Stop()

	// Initialize router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	api.SetupRoutes(router, db, manager, logger)

	// Shut the scheduler down cleanly on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("Shutting down")
		revalScheduler.Stop()
		db.Close()
		os.Exit(0)
	}()

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
