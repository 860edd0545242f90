package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/bobby-s-dev/weather-reporter/internal/models"
	"go.uber.org/zap"
)

const DefaultClimaCellBaseURL = "https://api.climacell.co/v3"

type ClimaCellClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

func NewClimaCellClient(apiKey, baseURL string, config ClientConfig, logger *zap.Logger) *ClimaCellClient {
	if baseURL == "" {
		baseURL = DefaultClimaCellBaseURL
	}
	baseClient := NewBaseClient("climacell", config, logger)
	return &ClimaCellClient{
		BaseClient: baseClient,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Realtime fetches current conditions for a coordinate. Fields are requested
// in the given order and the response keeps the order upstream sent them in.
func (c *ClimaCellClient) Realtime(ctx context.Context, lat, lon float64, fields []string, unitSystem string) (models.Conditions, error) {
	query := url.Values{}
	query.Set("lat", formatCoordinate(lat))
	query.Set("lon", formatCoordinate(lon))
	query.Set("fields", strings.Join(fields, ","))
	query.Set("unit_system", unitSystem)
	query.Set("apikey", c.apiKey)

	data, err := c.Get(ctx, c.baseURL+"/weather/realtime", query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch realtime weather: %w", err)
	}

	var conditions models.Conditions
	if err := json.Unmarshal(data, &conditions); err != nil {
		return nil, fmt.Errorf("%w: realtime response: %w", ErrDecode, err)
	}

	return conditions, nil
}
