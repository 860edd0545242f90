package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createSettingsTableSQL = `
    CREATE TABLE IF NOT EXISTS user_settings (
        nick TEXT NOT NULL,
        setting_key TEXT NOT NULL,
        setting_value TEXT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        PRIMARY KEY (nick, setting_key)
    )
`

	getSettingSQL = `
    SELECT setting_value FROM user_settings
    WHERE nick = $1 AND setting_key = $2
`

	upsertSettingSQL = `
    INSERT INTO user_settings (nick, setting_key, setting_value, updated_at)
    VALUES ($1, $2, $3, now())
    ON CONFLICT (nick, setting_key)
    DO UPDATE SET setting_value = EXCLUDED.setting_value, updated_at = now()
`
)

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL and creates the settings table.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createSettingsTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, nick, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, getSettingSQL, NormalizeNick(nick), key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s for %s: %w", key, nick, err)
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, nick, key, value string) error {
	if _, err := s.pool.Exec(ctx, upsertSettingSQL, NormalizeNick(nick), key, value); err != nil {
		return fmt.Errorf("set %s for %s: %w", key, nick, err)
	}
	return nil
}

func (s *PostgresStore) Driver() string { return DriverPostgres }

// Close releases the pool resources.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
