package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"thaitour_go/config"
	"thaitour_go/database"
	"thaitour_go/database/seeders"
	"thaitour_go/handlers"
	"thaitour_go/middleware"
	"thaitour_go/routes"
	"thaitour_go/services"
	"thaitour_go/services/websocket"
	"thaitour_go/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

const (
	serviceName = "Thai Tour API"
	version     = "1.0.0"

	logArchiveDays = 30
)

func main() {
	config.LoadConfig()
	setupLogging()

	// DATE columns are read in time.Local (loc=Local in the DSN).
	time.Local = config.AppConfig.Location()

	database.Connect()
	defer database.Close()

	if config.AppConfig.SeedData {
		seeders.SeedAll()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	catalog := services.NewCatalogService()
	scheduleService := services.NewScheduleService(catalog, wsHub)
	importer := services.NewLegacyImportService(catalog, wsHub)
	archive := services.NewLogArchiveService()
	lineMessaging := services.NewLineMessagingService(catalog)

	scheduler := services.NewScheduler(ctx, config.AppConfig.Location())
	if err := scheduler.Add("schedule-sweep", config.AppConfig.ScheduleSweepCron, func(ctx context.Context) error {
		_, err := scheduleService.DeactivateDeparted(ctx, catalog.Today())
		return err
	}); err != nil {
		logrus.WithError(err).Fatal("Invalid SCHEDULE_SWEEP_CRON")
	}
	if err := scheduler.Add("log-maintenance", config.AppConfig.LogArchiveCron, func(ctx context.Context) error {
		archive.RunMaintenance(ctx, logArchiveDays)
		return nil
	}); err != nil {
		logrus.WithError(err).Fatal("Invalid LOG_ARCHIVE_CRON")
	}
	scheduler.Start()
	defer scheduler.Stop()

	store, err := storage.NewStorageService()
	if err != nil {
		logrus.WithError(err).Warn("File storage disabled")
		store = nil
	}

	healthService := services.NewHealthService(serviceName, version, database.DB, database.GetRedisClient(), scheduler)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(config.AppConfig.MaxFileSize),
		Immutable:    true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.AppConfig.AllowedOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.LogActivityMiddleware())

	routes.SetupRoutes(app, routes.Dependencies{
		Catalog:   catalog,
		Schedules: scheduleService,
		Importer:  importer,
		Archive:   archive,
		Health:    healthService,
		Brochure:  services.NewBrochureService(config.AppConfig.BrochureFontPath, config.AppConfig.SiteName),
		Storage:   store,
		Line:      handlers.NewLineWebhookHandler(config.AppConfig.LineChannelSecret, lineMessaging),
		Hub:       wsHub,
	})
	routes.SetupStaticRoutes(app)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Route not found",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":        config.AppConfig.Port,
		"environment": config.AppConfig.AppEnv,
		"timezone":    time.Local.String(),
		"version":     version,
	}).Info("Server starting")

	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}

// setupLogging configures logrus from LOG_LEVEL and LOG_FILE
func setupLogging() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(config.AppConfig.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if config.AppConfig.AppEnv == "development" || config.AppConfig.LogFile == "" {
		logrus.SetOutput(os.Stdout)
		return
	}

	if err := os.MkdirAll(filepath.Dir(config.AppConfig.LogFile), 0755); err != nil {
		log.Printf("Warning: Could not create logs directory: %v", err)
	}
	file, err := os.OpenFile(config.AppConfig.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Warning: Could not open log file, logging to stdout: %v", err)
		return
	}
	logrus.SetOutput(file)
}

// customErrorHandler handles application errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
		"status": code,
	}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"code":   code,
		"path":   c.Path(),
		"method": c.Method(),
	})
}
