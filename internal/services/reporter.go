package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-reporter/internal/models"
	"go.uber.org/zap"
)

type TimezoneLookup interface {
	Timezone(ctx context.Context, lat, lon float64, timestamp int64) (string, error)
}

type WeatherFetcher interface {
	Realtime(ctx context.Context, lat, lon float64, fields []string, unitSystem string) (models.Conditions, error)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Reporter turns a resolved location into a rendered weather report. Each
// report makes a timezone lookup followed by one realtime fetch, in sequence.
type Reporter struct {
	resolver  *Resolver
	timezones TimezoneLookup
	weather   WeatherFetcher
	clock     Clock
	logger    *zap.Logger

	mu             sync.RWMutex
	lastReportTime time.Time
	successCount   int
	failureCount   int
}

func NewReporter(geocoder Geocoder, timezones TimezoneLookup, weather WeatherFetcher, clock Clock, logger *zap.Logger) *Reporter {
	if clock == nil {
		clock = RealClock{}
	}
	return &Reporter{
		resolver:  NewResolver(geocoder, logger),
		timezones: timezones,
		weather:   weather,
		clock:     clock,
		logger:    logger,
	}
}

func (r *Reporter) Resolve(ctx context.Context, text string) (models.Location, error) {
	return r.resolver.Resolve(ctx, text)
}

// Report fetches current conditions for loc and renders them.
func (r *Reporter) Report(ctx context.Context, loc models.Location, fields []string, unitSystem string) (models.Report, error) {
	report, err := r.report(ctx, loc, fields, unitSystem)

	r.mu.Lock()
	r.lastReportTime = r.clock.Now()
	if err != nil {
		r.failureCount++
	} else {
		r.successCount++
	}
	r.mu.Unlock()

	return report, err
}

func (r *Reporter) report(ctx context.Context, loc models.Location, fields []string, unitSystem string) (models.Report, error) {
	startTime := r.clock.Now()

	zone, err := r.timezones.Timezone(ctx, loc.Latitude, loc.Longitude, startTime.Unix())
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to look up timezone for %s: %w", loc.DisplayName, err)
	}
	tz, err := time.LoadLocation(zone)
	if err != nil {
		return models.Report{}, fmt.Errorf("unknown timezone %q: %w", zone, err)
	}

	conditions, err := r.weather.Realtime(ctx, loc.Latitude, loc.Longitude, fields, unitSystem)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to fetch weather for %s: %w", loc.DisplayName, err)
	}

	segments, err := FormatConditions(conditions, tz)
	if err != nil {
		return models.Report{}, err
	}

	report := RenderReport(loc.DisplayName, segments)

	r.logger.Debug("Weather report rendered",
		zap.String("location", loc.DisplayName),
		zap.String("timezone", zone),
		zap.Int("segments", len(segments)),
		zap.Int("lines", len(report.Lines)),
		zap.Duration("duration", r.clock.Now().Sub(startTime)))

	return report, nil
}

func (r *Reporter) GetStats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]interface{}{
		"last_report_time": r.lastReportTime,
		"success_count":    r.successCount,
		"failure_count":    r.failureCount,
	}
}
