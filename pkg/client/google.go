package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/weather-reporter/internal/models"
	"go.uber.org/zap"
)

const DefaultGoogleBaseURL = "https://maps.googleapis.com/maps/api"

type GoogleClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

type GoogleGeocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type GoogleTimezoneResponse struct {
	DstOffset    float64 `json:"dstOffset"`
	RawOffset    float64 `json:"rawOffset"`
	Status       string  `json:"status"`
	TimeZoneID   string  `json:"timeZoneId"`
	TimeZoneName string  `json:"timeZoneName"`
	ErrorMessage string  `json:"errorMessage"`
}

func NewGoogleClient(apiKey, baseURL string, config ClientConfig, logger *zap.Logger) *GoogleClient {
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}
	baseClient := NewBaseClient("google", config, logger)
	return &GoogleClient{
		BaseClient: baseClient,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Geocode looks up a free-text address and returns the first match.
func (c *GoogleClient) Geocode(ctx context.Context, address string) (models.Location, error) {
	query := url.Values{}
	query.Set("address", address)
	query.Set("key", c.apiKey)

	data, err := c.Get(ctx, c.baseURL+"/geocode/json", query)
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to geocode %q: %w", address, err)
	}

	var response GoogleGeocodeResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return models.Location{}, fmt.Errorf("%w: geocode response: %w", ErrDecode, err)
	}

	switch response.Status {
	case "OK":
	case "ZERO_RESULTS":
		return models.Location{}, fmt.Errorf("%w: %q", ErrNoResults, address)
	default:
		return models.Location{}, fmt.Errorf("%w: geocode status %s %s", ErrStatus, response.Status, response.ErrorMessage)
	}

	if len(response.Results) == 0 {
		return models.Location{}, fmt.Errorf("%w: %q", ErrNoResults, address)
	}

	first := response.Results[0]
	return models.Location{
		Latitude:    first.Geometry.Location.Lat,
		Longitude:   first.Geometry.Location.Lng,
		DisplayName: first.FormattedAddress,
	}, nil
}

// Timezone returns the IANA zone id in effect at the coordinate at the given
// unix time.
func (c *GoogleClient) Timezone(ctx context.Context, lat, lon float64, timestamp int64) (string, error) {
	query := url.Values{}
	query.Set("location", formatCoordinate(lat)+","+formatCoordinate(lon))
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))
	query.Set("key", c.apiKey)

	data, err := c.Get(ctx, c.baseURL+"/timezone/json", query)
	if err != nil {
		return "", fmt.Errorf("failed to fetch timezone: %w", err)
	}

	var response GoogleTimezoneResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return "", fmt.Errorf("%w: timezone response: %w", ErrDecode, err)
	}

	if response.Status != "OK" {
		return "", fmt.Errorf("%w: timezone status %s %s", ErrStatus, response.Status, response.ErrorMessage)
	}
	if response.TimeZoneID == "" {
		return "", fmt.Errorf("%w: empty timeZoneId", ErrDecode)
	}

	return response.TimeZoneID, nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
