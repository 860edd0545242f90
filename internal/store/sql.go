package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const timestampLayout = "2006-01-02 15:04:05"

type dialect struct {
	driver string
	schema string
	upsert string
}

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: `CREATE TABLE IF NOT EXISTS user_settings (
        nick TEXT NOT NULL,
        setting_key TEXT NOT NULL,
        setting_value TEXT NOT NULL,
        updated_at TEXT NOT NULL,
        PRIMARY KEY (nick, setting_key)
    );`,
	upsert: `INSERT INTO user_settings(nick, setting_key, setting_value, updated_at) VALUES(?,?,?,?)
        ON CONFLICT(nick, setting_key) DO UPDATE SET setting_value = excluded.setting_value, updated_at = excluded.updated_at`,
}

var mysqlDialect = dialect{
	driver: "mysql",
	schema: `CREATE TABLE IF NOT EXISTS user_settings (
        nick VARCHAR(64) NOT NULL,
        setting_key VARCHAR(64) NOT NULL,
        setting_value TEXT NOT NULL,
        updated_at DATETIME NOT NULL,
        PRIMARY KEY (nick, setting_key)
    ) DEFAULT CHARSET=utf8mb4`,
	upsert: `INSERT INTO user_settings(nick, setting_key, setting_value, updated_at) VALUES(?,?,?,?)
        ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value), updated_at = VALUES(updated_at)`,
}

const selectSettingSQL = `SELECT setting_value FROM user_settings WHERE nick = ? AND setting_key = ?`

// SQLStore implements Store on database/sql for SQLite (pure Go driver
// modernc.org/sqlite) and MySQL.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, err
	}
	// one writer at a time keeps sqlite from reporting SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	return newSQLStore(ctx, db, sqliteDialect)
}

// NewMySQL connects with a go-sql-driver DSN such as
// user:pass@tcp(host:3306)/weatherbot.
func NewMySQL(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open(mysqlDialect.driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	return newSQLStore(ctx, db, mysqlDialect)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLStore{db: db, dialect: d}, nil
}

func (s *SQLStore) Get(ctx context.Context, nick, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectSettingSQL, NormalizeNick(nick), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s for %s: %w", key, nick, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, nick, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsert,
		NormalizeNick(nick), key, value, time.Now().UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("set %s for %s: %w", key, nick, err)
	}
	return nil
}

func (s *SQLStore) Driver() string { return s.dialect.driver }

func (s *SQLStore) Close() error {
	return s.db.Close()
}
