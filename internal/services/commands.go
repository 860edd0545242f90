package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/bobby-s-dev/weather-reporter/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgNoClimaCellKey   = "No ClimaCell API key found, please configure this plugin."
	msgNoGoogleKey      = "No Google API key found, please configure this plugin."
	msgNoStoredLocation = "I don't know where you live. Give me a location, like %s%s London, or tell me where you live by saying %ssetlocation London, for example."
	msgNotFound         = "I couldn't find a location by that name."
	msgSetLocationUsage = `Give me a location, like "Boston" or "90210".`
	msgLocationSaved    = "I now have you at %s."
	msgNoForecast       = "Forecasts aren't available yet."
	msgFailure          = "Sorry, I couldn't get the weather right now."

	keyLatitude  = "latitude"
	keyLongitude = "longitude"
	keyLocation  = "location"

	KeyGoogle    = "GOOGLE_API_KEY"
	KeyClimaCell = "CLIMACELL_API_KEY"
)

// ReplySink sends text back to wherever a command came from. Reply addresses
// the caller by nick; Say does not.
type ReplySink interface {
	Say(text string) error
	Reply(text string) error
}

// KeyValueStore persists per-user settings.
type KeyValueStore interface {
	Get(ctx context.Context, user, key string) (string, bool, error)
	Set(ctx context.Context, user, key, value string) error
}

type ConfigProvider interface {
	GoogleAPIKey() string
	ClimaCellAPIKey() string
	Fields() []string
	Units() string
	HelpPrefix() string
}

type Request struct {
	Nick    string
	Command string
	Args    string
}

// Result tells the host how to account for a handled command. NoLimit
// commands do not use up the caller's rate limit.
type Result struct {
	NoLimit bool
}

type CommandFunc func(ctx context.Context, req Request, sink ReplySink) (Result, error)

type Command struct {
	Name    string
	Aliases []string
	Usage   string
	Example string
	Run     CommandFunc
}

type Commands struct {
	reporter *Reporter
	store    KeyValueStore
	config   ConfigProvider
	logger   *zap.Logger

	commands []*Command
	index    map[string]*Command

	mu           sync.RWMutex
	handled      map[string]int
	failureCount int
}

func NewCommands(reporter *Reporter, store KeyValueStore, config ConfigProvider, logger *zap.Logger) *Commands {
	c := &Commands{
		reporter: reporter,
		store:    store,
		config:   config,
		logger:   logger,
		index:    make(map[string]*Command),
		handled:  make(map[string]int),
	}

	c.register(&Command{Name: "weather", Aliases: []string{"wz"}, Usage: "[location]", Example: "boston", Run: c.weather})
	c.register(&Command{Name: "forecast", Aliases: []string{"fc", "wfc", "wfz"}, Usage: "[location]", Example: "boston", Run: c.forecast})
	c.register(&Command{Name: "setlocation", Aliases: []string{"setl", "setw"}, Usage: "<location>", Example: "boston", Run: c.setLocation})
	c.register(&Command{Name: "help", Usage: "[command]", Example: "weather", Run: c.help})

	return c
}

func (c *Commands) register(cmd *Command) {
	c.commands = append(c.commands, cmd)
	c.index[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		c.index[alias] = cmd
	}
}

// List returns the registered commands in registration order.
func (c *Commands) List() []*Command {
	return c.commands
}

func (c *Commands) Lookup(name string) (*Command, bool) {
	cmd, ok := c.index[strings.ToLower(name)]
	return cmd, ok
}

// Handle runs the command named by req.Command. handled is false when no
// such command is registered. Unexpected failures are logged and answered
// with a generic apology rather than returned.
func (c *Commands) Handle(ctx context.Context, req Request, sink ReplySink) (result Result, handled bool) {
	cmd, ok := c.Lookup(req.Command)
	if !ok {
		return Result{}, false
	}

	logger := c.logger.With(
		zap.String("command_id", uuid.NewString()),
		zap.String("command", cmd.Name),
		zap.String("nick", req.Nick))
	logger.Debug("Handling command", zap.String("args", req.Args))

	tracked := &trackingSink{ReplySink: sink}
	result, err := cmd.Run(ctx, req, tracked)

	c.mu.Lock()
	c.handled[cmd.Name]++
	if err != nil {
		c.failureCount++
	}
	c.mu.Unlock()

	if err != nil && tracked.err != nil && errors.Is(err, tracked.err) {
		// the chat side is gone; the command itself finished
		logger.Warn("Failed to send reply", zap.Error(err))
		return result, true
	}

	if err != nil {
		logger.Error("Command failed", zap.Error(err))
		if replyErr := sink.Reply(msgFailure); replyErr != nil {
			logger.Warn("Failed to send failure notice", zap.Error(replyErr))
		}
		return Result{}, true
	}

	return result, true
}

// Preview renders the report a weather command for text would say, without
// touching any stored location.
func (c *Commands) Preview(ctx context.Context, text string) (models.Report, error) {
	if err := c.checkKeys(true); err != nil {
		return models.Report{}, err
	}
	loc, err := c.reporter.Resolve(ctx, text)
	if err != nil {
		return models.Report{}, err
	}
	return c.reporter.Report(ctx, loc, c.config.Fields(), c.config.Units())
}

func (c *Commands) weather(ctx context.Context, req Request, sink ReplySink) (Result, error) {
	if err := c.checkKeys(true); err != nil {
		return Result{}, replyConfigMissing(sink, err)
	}

	var loc models.Location
	if args := strings.TrimSpace(req.Args); args == "" {
		stored, err := c.storedLocation(ctx, req.Nick)
		if errors.Is(err, ErrNoStoredLocation) {
			pfx := c.config.HelpPrefix()
			return Result{}, sink.Say(fmt.Sprintf(msgNoStoredLocation, pfx, commandName(req, "weather"), pfx))
		}
		if err != nil {
			return Result{}, err
		}
		loc = stored
	} else {
		resolved, err := c.reporter.Resolve(ctx, args)
		if errors.Is(err, ErrLocationNotFound) {
			return Result{NoLimit: true}, sink.Reply(msgNotFound)
		}
		if err != nil {
			return Result{}, err
		}
		loc = resolved
	}

	report, err := c.reporter.Report(ctx, loc, c.config.Fields(), c.config.Units())
	if err != nil {
		return Result{}, err
	}

	for _, line := range report.Lines {
		if err := sink.Say(line); err != nil {
			return Result{}, err
		}
	}
	return Result{}, nil
}

func (c *Commands) forecast(ctx context.Context, req Request, sink ReplySink) (Result, error) {
	return Result{NoLimit: true}, sink.Reply(msgNoForecast)
}

func (c *Commands) setLocation(ctx context.Context, req Request, sink ReplySink) (Result, error) {
	if err := c.checkKeys(false); err != nil {
		return Result{}, replyConfigMissing(sink, err)
	}

	args := strings.TrimSpace(req.Args)
	if args == "" {
		return Result{NoLimit: true}, sink.Reply(msgSetLocationUsage)
	}

	loc, err := c.reporter.Resolve(ctx, args)
	if errors.Is(err, ErrLocationNotFound) {
		return Result{NoLimit: true}, sink.Reply(msgNotFound)
	}
	if err != nil {
		return Result{}, err
	}

	values := []struct{ key, value string }{
		{keyLatitude, strconv.FormatFloat(loc.Latitude, 'f', -1, 64)},
		{keyLongitude, strconv.FormatFloat(loc.Longitude, 'f', -1, 64)},
		{keyLocation, loc.DisplayName},
	}
	for _, v := range values {
		if err := c.store.Set(ctx, req.Nick, v.key, v.value); err != nil {
			return Result{}, fmt.Errorf("failed to store %s for %s: %w", v.key, req.Nick, err)
		}
	}

	return Result{}, sink.Reply(fmt.Sprintf(msgLocationSaved, loc.DisplayName))
}

func (c *Commands) help(ctx context.Context, req Request, sink ReplySink) (Result, error) {
	pfx := c.config.HelpPrefix()

	if name := strings.TrimSpace(req.Args); name != "" {
		cmd, ok := c.Lookup(strings.TrimPrefix(name, pfx))
		if !ok {
			return Result{NoLimit: true}, sink.Reply(fmt.Sprintf("I don't know a command called %s.", name))
		}
		text := fmt.Sprintf("%s%s %s (e.g. %s%s %s)", pfx, cmd.Name, cmd.Usage, pfx, cmd.Name, cmd.Example)
		if len(cmd.Aliases) > 0 {
			text += fmt.Sprintf(", also %s%s", pfx, strings.Join(cmd.Aliases, ", "+pfx))
		}
		return Result{}, sink.Reply(text)
	}

	usages := make([]string, 0, len(c.commands))
	for _, cmd := range c.commands {
		usages = append(usages, pfx+cmd.Name+" "+cmd.Usage)
	}
	return Result{}, sink.Reply("Commands: " + strings.Join(usages, ", "))
}

func (c *Commands) storedLocation(ctx context.Context, nick string) (models.Location, error) {
	name, ok, err := c.store.Get(ctx, nick, keyLocation)
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to read stored location for %s: %w", nick, err)
	}
	if !ok || name == "" {
		return models.Location{}, ErrNoStoredLocation
	}

	lat, err := c.storedCoordinate(ctx, nick, keyLatitude)
	if err != nil {
		return models.Location{}, err
	}
	lon, err := c.storedCoordinate(ctx, nick, keyLongitude)
	if err != nil {
		return models.Location{}, err
	}

	return models.Location{Latitude: lat, Longitude: lon, DisplayName: name}, nil
}

func (c *Commands) storedCoordinate(ctx context.Context, nick, key string) (float64, error) {
	raw, ok, err := c.store.Get(ctx, nick, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read stored %s for %s: %w", key, nick, err)
	}
	if !ok {
		return 0, fmt.Errorf("stored %s missing for %s", key, nick)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid stored %s for %s: %w", key, nick, err)
	}
	return v, nil
}

// checkKeys reports the first missing API key. The ClimaCell key is only
// needed when weather is fetched.
func (c *Commands) checkKeys(needWeather bool) error {
	if needWeather && c.config.ClimaCellAPIKey() == "" {
		return &ConfigMissingError{Key: KeyClimaCell}
	}
	if c.config.GoogleAPIKey() == "" {
		return &ConfigMissingError{Key: KeyGoogle}
	}
	return nil
}

func (c *Commands) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	handled := make(map[string]int, len(c.handled))
	for name, count := range c.handled {
		handled[name] = count
	}

	return map[string]interface{}{
		"handled":       handled,
		"failure_count": c.failureCount,
		"reports":       c.reporter.GetStats(),
	}
}

// trackingSink remembers the last error its sink returned.
type trackingSink struct {
	ReplySink
	err error
}

func (s *trackingSink) Say(text string) error {
	err := s.ReplySink.Say(text)
	if err != nil {
		s.err = err
	}
	return err
}

func (s *trackingSink) Reply(text string) error {
	err := s.ReplySink.Reply(text)
	if err != nil {
		s.err = err
	}
	return err
}

func replyConfigMissing(sink ReplySink, err error) error {
	var missing *ConfigMissingError
	if !errors.As(err, &missing) {
		return err
	}
	if missing.Key == KeyClimaCell {
		return sink.Reply(msgNoClimaCellKey)
	}
	return sink.Reply(msgNoGoogleKey)
}

func commandName(req Request, fallback string) string {
	if req.Command == "" {
		return fallback
	}
	return req.Command
}
