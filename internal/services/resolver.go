package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobby-s-dev/weather-reporter/internal/models"
	"github.com/bobby-s-dev/weather-reporter/pkg/client"
	"go.uber.org/zap"
)

type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Location, error)
}

// locationAliases rewrites nicknames the geocoder does not understand.
var locationAliases = map[string]string{
	"chaz": "capitol hill seattle",
}

type Resolver struct {
	geocoder Geocoder
	logger   *zap.Logger
}

func NewResolver(geocoder Geocoder, logger *zap.Logger) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		logger:   logger,
	}
}

// NormalizeQuery trims and lower-cases a location query and applies aliases.
func NormalizeQuery(text string) string {
	query := strings.ToLower(strings.TrimSpace(text))
	if alias, ok := locationAliases[query]; ok {
		return alias
	}
	return query
}

// Resolve geocodes free text to the first matching place. Upstream failures
// of any declared kind collapse into ErrLocationNotFound; anything else,
// such as a cancelled context, is returned as is.
func (r *Resolver) Resolve(ctx context.Context, text string) (models.Location, error) {
	query := NormalizeQuery(text)
	if query == "" {
		return models.Location{}, ErrLocationNotFound
	}

	loc, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		if isLookupFailure(err) {
			r.logger.Info("Location lookup failed",
				zap.String("query", query),
				zap.Error(err))
			return models.Location{}, fmt.Errorf("%w: %q", ErrLocationNotFound, query)
		}
		return models.Location{}, err
	}

	r.logger.Debug("Location resolved",
		zap.String("query", query),
		zap.String("display_name", loc.DisplayName),
		zap.Float64("latitude", loc.Latitude),
		zap.Float64("longitude", loc.Longitude))

	return loc, nil
}

func isLookupFailure(err error) bool {
	return errors.Is(err, client.ErrTransport) ||
		errors.Is(err, client.ErrStatus) ||
		errors.Is(err, client.ErrDecode) ||
		errors.Is(err, client.ErrNoResults)
}
