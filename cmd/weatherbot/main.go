package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bobby-s-dev/weather-reporter/internal/api"
	"github.com/bobby-s-dev/weather-reporter/internal/bot"
	"github.com/bobby-s-dev/weather-reporter/internal/config"
	"github.com/bobby-s-dev/weather-reporter/internal/services"
	"github.com/bobby-s-dev/weather-reporter/internal/store"
	"github.com/bobby-s-dev/weather-reporter/pkg/client"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	zap.ReplaceGlobals(logger)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if level, err := zapcore.ParseLevel(cfg.Server.LogLevel); err == nil {
		zapCfg := zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(level)
		if l, err := zapCfg.Build(); err == nil {
			logger = l
			zap.ReplaceGlobals(logger)
		}
	}

	logger.Info("Starting weather bot")

	if err := run(cfg, logger); err != nil {
		logger.Error("Weather bot stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("Stopped")
	_ = logger.Sync()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, err := store.New(ctx, cfg.Store.Driver, cfg.Store.DSN, logger)
	if err != nil {
		return err
	}
	defer settings.Close()

	if cfg.GoogleAPIKey() == "" {
		logger.Warn("GOOGLE_API_KEY is not set; weather and setlocation will ask for configuration")
	}
	if cfg.ClimaCellAPIKey() == "" {
		logger.Warn("CLIMACELL_API_KEY is not set; weather will ask for configuration")
	}

	clientConfig := client.ClientConfig{
		Timeout:        cfg.HTTPClient.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}
	google := client.NewGoogleClient(cfg.Google.APIKey, cfg.Google.BaseURL, clientConfig, logger)
	climacell := client.NewClimaCellClient(cfg.ClimaCell.APIKey, cfg.ClimaCell.BaseURL, clientConfig, logger)

	reporter := services.NewReporter(google, google, climacell, services.RealClock{}, logger)
	commands := services.NewCommands(reporter, settings, cfg, logger)

	var app *fiber.App
	if cfg.Server.Port != "" {
		app = fiber.New(fiber.Config{
			ReadTimeout:           cfg.Server.ReadTimeout,
			WriteTimeout:          cfg.Server.WriteTimeout,
			ErrorHandler:          errorHandler,
			DisableStartupMessage: true,
		})
		api.SetupRoutes(app, api.NewHandler(commands, settings.Driver(), logger))

		// Start server in goroutine
		go func() {
			addr := ":" + cfg.Server.Port
			logger.Info("Starting status API", zap.String("address", addr))

			if err := app.Listen(addr); err != nil {
				logger.Error("Status API stopped", zap.Error(err))
			}
		}()
	}

	ircBot := bot.New(bot.Options{
		Server:    cfg.IRC.Server,
		TLS:       cfg.IRC.TLS,
		Nick:      cfg.IRC.Nick,
		User:      cfg.IRC.User,
		Name:      cfg.IRC.Name,
		Password:  cfg.IRC.Password,
		Channels:  cfg.IRC.Channels,
		Prefix:    cfg.IRC.Prefix,
		RateLimit: cfg.IRC.RateLimit,
	}, commands, logger)

	runErr := ircBot.Run(ctx)

	logger.Info("Shutting down...")

	if app != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
	}

	if runErr == nil && ctx.Err() == nil {
		return errors.New("IRC connection closed")
	}
	return runErr
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Default to 500 status code
	code := fiber.StatusInternalServerError

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
