package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-reporter/internal/models"
	"github.com/bobby-s-dev/weather-reporter/pkg/client"
)

type fakeGeocoder struct {
	places  map[string]models.Location
	err     error
	queries []string
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (models.Location, error) {
	g.queries = append(g.queries, address)
	if g.err != nil {
		return models.Location{}, g.err
	}
	loc, ok := g.places[address]
	if !ok {
		return models.Location{}, client.ErrNoResults
	}
	return loc, nil
}

type fakeTimezones struct {
	zone       string
	err        error
	timestamps []int64
}

func (z *fakeTimezones) Timezone(ctx context.Context, lat, lon float64, timestamp int64) (string, error) {
	z.timestamps = append(z.timestamps, timestamp)
	if z.err != nil {
		return "", z.err
	}
	return z.zone, nil
}

type fakeWeather struct {
	conditions models.Conditions
	err        error
	calls      int
	lastFields []string
	lastUnits  string
	lastLat    float64
	lastLon    float64
}

func (w *fakeWeather) Realtime(ctx context.Context, lat, lon float64, fields []string, unitSystem string) (models.Conditions, error) {
	w.calls++
	w.lastFields = fields
	w.lastUnits = unitSystem
	w.lastLat, w.lastLon = lat, lon
	if w.err != nil {
		return nil, w.err
	}
	return w.conditions, nil
}

type fakeSink struct {
	says    []string
	replies []string
	err     error
}

func (s *fakeSink) Say(text string) error {
	s.says = append(s.says, text)
	return s.err
}

func (s *fakeSink) Reply(text string) error {
	s.replies = append(s.replies, text)
	return s.err
}

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]string)}
}

func (s *fakeStore) Get(ctx context.Context, user, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.values[strings.ToLower(user)+"/"+key]
	return v, ok, nil
}

func (s *fakeStore) Set(ctx context.Context, user, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.values[strings.ToLower(user)+"/"+key] = value
	return nil
}

type fakeConfig struct {
	google    string
	climacell string
	fields    []string
	units     string
}

func (c fakeConfig) GoogleAPIKey() string    { return c.google }
func (c fakeConfig) ClimaCellAPIKey() string { return c.climacell }
func (c fakeConfig) Fields() []string        { return c.fields }
func (c fakeConfig) Units() string           { return c.units }
func (c fakeConfig) HelpPrefix() string      { return "." }

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
