package api

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-reporter/internal/ircfmt"
	"github.com/bobby-s-dev/weather-reporter/internal/models"
	"github.com/bobby-s-dev/weather-reporter/internal/services"
)

var validate = validator.New()

// CommandService is the part of the command layer the status API exposes.
type CommandService interface {
	Preview(ctx context.Context, text string) (models.Report, error)
	List() []*services.Command
	GetStats() map[string]interface{}
}

type Handler struct {
	commands    CommandService
	storeDriver string
	logger      *zap.Logger
	startTime   time.Time
}

func NewHandler(commands CommandService, storeDriver string, logger *zap.Logger) *Handler {
	return &Handler{
		commands:    commands,
		storeDriver: storeDriver,
		logger:      logger,
		startTime:   time.Now(),
	}
}

type currentWeatherQuery struct {
	Location string `validate:"required,max=200"`
}

// GetCurrentWeather handles GET /api/v1/weather/current
func (h *Handler) GetCurrentWeather(c *fiber.Ctx) error {
	q := currentWeatherQuery{Location: c.Query("location")}
	if err := validate.Struct(q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "location parameter is required",
		})
	}

	h.logger.Info("Previewing current weather", zap.String("location", q.Location))

	report, err := h.commands.Preview(c.UserContext(), q.Location)
	if err != nil {
		var missing *services.ConfigMissingError
		switch {
		case errors.Is(err, services.ErrLocationNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "location not found",
			})
		case errors.As(err, &missing):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": missing.Error(),
			})
		}

		h.logger.Error("Failed to preview current weather",
			zap.String("location", q.Location),
			zap.Error(err))

		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch weather data",
		})
	}

	plain := make([]string, 0, len(report.Lines))
	for _, line := range report.Lines {
		plain = append(plain, ircfmt.Strip(line))
	}

	return c.JSON(fiber.Map{
		"location": report.Location,
		"segments": report.Segments,
		"lines":    report.Lines,
		"plain":    plain,
	})
}

// GetCommands handles GET /api/v1/commands
func (h *Handler) GetCommands(c *fiber.Ctx) error {
	type command struct {
		Name    string   `json:"name"`
		Aliases []string `json:"aliases"`
		Usage   string   `json:"usage"`
		Example string   `json:"example"`
	}

	list := h.commands.List()
	out := make([]command, 0, len(list))
	for _, cmd := range list {
		aliases := cmd.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		out = append(out, command{
			Name:    cmd.Name,
			Aliases: aliases,
			Usage:   cmd.Usage,
			Example: cmd.Example,
		})
	}

	return c.JSON(fiber.Map{
		"commands": out,
	})
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
		"store":     h.storeDriver,
		"stats":     h.commands.GetStats(),
	})
}

// GetMetrics handles GET /api/v1/metrics
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"metrics":   h.commands.GetStats(),
		"timestamp": time.Now(),
	})
}
