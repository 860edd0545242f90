package config

import (
	"strings"
	"testing"
	"time"

	"github.com/bobby-s-dev/weather-reporter/internal/services"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if got := strings.Join(cfg.Fields(), ","); got != "temp,feels_like,weather_code" {
		t.Errorf("Fields() = %q", got)
	}
	if cfg.Units() != "us" {
		t.Errorf("Units() = %q", cfg.Units())
	}
	if cfg.HelpPrefix() != "." {
		t.Errorf("HelpPrefix() = %q", cfg.HelpPrefix())
	}
	if cfg.IRC.Server != "irc.libera.chat:6697" || !cfg.IRC.TLS {
		t.Errorf("IRC = %s tls=%v", cfg.IRC.Server, cfg.IRC.TLS)
	}
	if cfg.IRC.Nick != "weatherbot" || cfg.IRC.User != "weatherbot" {
		t.Errorf("IRC identity = %s/%s", cfg.IRC.Nick, cfg.IRC.User)
	}
	if cfg.IRC.RateLimit != 3*time.Second {
		t.Errorf("RateLimit = %v", cfg.IRC.RateLimit)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "weatherbot.db" {
		t.Errorf("Store = %s %s", cfg.Store.Driver, cfg.Store.DSN)
	}
	if cfg.HTTPClient.Timeout != 10*time.Second || cfg.CircuitBreaker.Timeout != 30*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.HTTPClient.Timeout, cfg.CircuitBreaker.Timeout)
	}
	if cfg.Server.Port != "" {
		t.Errorf("status API should be disabled by default, port=%q", cfg.Server.Port)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "gkey")
	t.Setenv("CLIMACELL_API_KEY", "ckey")
	t.Setenv("CLIMACELL_FIELDS", " temp , humidity,,wind_direction ")
	t.Setenv("CLIMACELL_UNITS", "SI")
	t.Setenv("IRC_CHANNELS", "#weather, #bots")
	t.Setenv("IRC_TLS", "false")
	t.Setenv("COMMAND_PREFIX", "!")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("HTTP_PORT", "8081")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	var provider services.ConfigProvider = cfg
	if provider.GoogleAPIKey() != "gkey" || provider.ClimaCellAPIKey() != "ckey" {
		t.Errorf("keys = %q %q", provider.GoogleAPIKey(), provider.ClimaCellAPIKey())
	}
	if got := strings.Join(provider.Fields(), ","); got != "temp,humidity,wind_direction" {
		t.Errorf("Fields() = %q", got)
	}
	if provider.Units() != "si" || provider.HelpPrefix() != "!" {
		t.Errorf("Units/HelpPrefix = %q %q", provider.Units(), provider.HelpPrefix())
	}
	if strings.Join(cfg.IRC.Channels, ",") != "#weather,#bots" || cfg.IRC.TLS {
		t.Errorf("IRC channels=%v tls=%v", cfg.IRC.Channels, cfg.IRC.TLS)
	}
	if cfg.Server.Port != "8081" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unit system", "CLIMACELL_UNITS", "imperial"},
		{"malformed field", "CLIMACELL_FIELDS", "temp,pollen index"},
		{"field with query", "CLIMACELL_FIELDS", "temp&apikey=x"},
		{"store driver", "STORE_DRIVER", "redis"},
		{"irc server", "IRC_SERVER", "irc.libera.chat"},
		{"timeout", "HTTP_TIMEOUT", "soon"},
		{"breaker threshold", "CIRCUIT_BREAKER_THRESHOLD", "0"},
		{"log level", "LOG_LEVEL", "verbose"},
		{"port", "HTTP_PORT", "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected %s=%q to be rejected", tt.key, tt.value)
			}
		})
	}
}

func TestLoadConfigAcceptsUnlabelledFields(t *testing.T) {
	t.Setenv("CLIMACELL_FIELDS", "temp,pm25,road_risk_score")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(cfg.Fields(), ","); got != "temp,pm25,road_risk_score" {
		t.Errorf("Fields() = %q", got)
	}
}
