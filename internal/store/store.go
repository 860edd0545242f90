package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Store keeps per-nick settings as strings. Nicks compare case-insensitively
// under RFC 1459 rules.
type Store interface {
	Get(ctx context.Context, nick, key string) (string, bool, error)
	Set(ctx context.Context, nick, key, value string) error
	Driver() string
	Close() error
}

// New opens the store selected by driver. dsn is a file path for sqlite and
// a connection string for mysql and postgres; it is ignored for memory.
func New(ctx context.Context, driver, dsn string, logger *zap.Logger) (Store, error) {
	var (
		s   Store
		err error
	)

	switch driver {
	case DriverMemory:
		s = NewMemoryStore(0, logger)
	case DriverSQLite:
		s, err = NewSQLite(ctx, dsn)
	case DriverMySQL:
		s, err = NewMySQL(ctx, dsn)
	case DriverPostgres:
		s, err = NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
	}

	logger.Info("Store opened", zap.String("driver", driver))
	return s, nil
}

var rfc1459 = strings.NewReplacer("[", "{", "]", "}", "\\", "|", "~", "^")

// NormalizeNick folds a nick to its RFC 1459 lower-case form, where []\~ are
// the upper-case forms of {}|^.
func NormalizeNick(nick string) string {
	return rfc1459.Replace(strings.ToLower(strings.TrimSpace(nick)))
}
