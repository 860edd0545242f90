package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string        `validate:"omitempty,numeric"`
		ReadTimeout  time.Duration `validate:"gt=0"`
		WriteTimeout time.Duration `validate:"gt=0"`
		LogLevel     string        `validate:"oneof=debug info warn error"`
	}

	Google struct {
		APIKey  string
		BaseURL string `validate:"required,url"`
	}

	ClimaCell struct {
		APIKey  string
		BaseURL string   `validate:"required,url"`
		Fields  []string `validate:"min=1,dive,climacell_field"`
		Units   string   `validate:"oneof=us si"`
	}

	HTTPClient struct {
		Timeout time.Duration `validate:"gt=0"`
	}

	CircuitBreaker struct {
		Threshold int           `validate:"gte=1"`
		Timeout   time.Duration `validate:"gt=0"`
	}

	IRC struct {
		Server    string `validate:"required,hostname_port"`
		TLS       bool
		Nick      string `validate:"required"`
		User      string `validate:"required"`
		Name      string `validate:"required"`
		Password  string
		Channels  []string
		Prefix    string        `validate:"required"`
		RateLimit time.Duration `validate:"gte=0"`
	}

	Store struct {
		Driver string `validate:"oneof=memory sqlite mysql postgres"`
		DSN    string `validate:"required_unless=Driver memory"`
	}
}

var (
	validate     = newValidator()
	fieldPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Fields are passed to ClimaCell as requested; fields the formatter has no
// rank for are rendered after the ranked ones.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("climacell_field", func(fl validator.FieldLevel) bool {
		return fieldPattern.MatchString(fl.Field().String())
	})
	return v
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Status API configuration
	cfg.Server.Port = getEnv("HTTP_PORT", "")
	cfg.Server.ReadTimeout = parseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("HTTP_WRITE_TIMEOUT", "30s"))
	cfg.Server.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))

	// Upstream APIs
	cfg.Google.APIKey = getEnv("GOOGLE_API_KEY", "")
	cfg.Google.BaseURL = getEnv("GOOGLE_BASE_URL", "https://maps.googleapis.com/maps/api")
	cfg.ClimaCell.APIKey = getEnv("CLIMACELL_API_KEY", "")
	cfg.ClimaCell.BaseURL = getEnv("CLIMACELL_BASE_URL", "https://api.climacell.co/v3")
	cfg.ClimaCell.Fields = splitList(getEnv("CLIMACELL_FIELDS", "temp,feels_like,weather_code"))
	cfg.ClimaCell.Units = strings.ToLower(getEnv("CLIMACELL_UNITS", "us"))

	cfg.HTTPClient.Timeout = parseDuration(getEnv("HTTP_TIMEOUT", "10s"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// IRC connection
	cfg.IRC.Server = getEnv("IRC_SERVER", "irc.libera.chat:6697")
	cfg.IRC.TLS = parseBool(getEnv("IRC_TLS", "true"))
	cfg.IRC.Nick = getEnv("IRC_NICK", "weatherbot")
	cfg.IRC.User = getEnv("IRC_USER", cfg.IRC.Nick)
	cfg.IRC.Name = getEnv("IRC_NAME", cfg.IRC.Nick)
	cfg.IRC.Password = getEnv("IRC_PASSWORD", "")
	cfg.IRC.Channels = splitList(getEnv("IRC_CHANNELS", ""))
	cfg.IRC.Prefix = getEnv("COMMAND_PREFIX", ".")
	cfg.IRC.RateLimit = parseDuration(getEnv("RATE_LIMIT", "3s"))

	// Location store
	cfg.Store.Driver = strings.ToLower(getEnv("STORE_DRIVER", "sqlite"))
	cfg.Store.DSN = getEnv("STORE_DSN", "weatherbot.db")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) GoogleAPIKey() string    { return c.Google.APIKey }
func (c *Config) ClimaCellAPIKey() string { return c.ClimaCell.APIKey }
func (c *Config) Fields() []string        { return c.ClimaCell.Fields }
func (c *Config) Units() string           { return c.ClimaCell.Units }
func (c *Config) HelpPrefix() string      { return c.IRC.Prefix }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseBool(value string) bool {
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		zap.L().Warn("Failed to parse bool", zap.String("value", value), zap.Error(err))
		return false
	}
	return boolValue
}
