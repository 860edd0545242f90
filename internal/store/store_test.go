package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestNormalizeNick(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice", "alice"},
		{" Bob ", "bob"},
		{"[Away]", "{away}"},
		{"back\\slash", "back|slash"},
		{"Tilde~", "tilde^"},
		{"{already}|^", "{already}|^"},
	}

	for _, tt := range tests {
		if got := NormalizeNick(tt.in); got != tt.want {
			t.Errorf("NormalizeNick(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// exerciseStore runs the behaviour every Store implementation must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "nobody", "location"); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
	}

	if err := s.Set(ctx, "Alice[m]", "location", "Boston, MA, USA"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "Alice[m]", "latitude", "42.3600825"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := s.Get(ctx, "alice{m}", "location")
	if err != nil || !ok || got != "Boston, MA, USA" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}

	if err := s.Set(ctx, "ALICE[M]", "location", "Cambridge, MA, USA"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, _, _ = s.Get(ctx, "alice[m]", "location")
	if got != "Cambridge, MA, USA" {
		t.Fatalf("last write should win, got %q", got)
	}

	got, ok, err = s.Get(ctx, "alice[m]", "latitude")
	if err != nil || !ok || got != "42.3600825" {
		t.Fatalf("latitude = %q, %v, %v", got, ok, err)
	}

	if _, ok, _ := s.Get(ctx, "alice[m]", "longitude"); ok {
		t.Fatalf("unset key should be missing")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(0, zap.NewNop())
	exerciseStore(t, s)

	if s.Driver() != DriverMemory {
		t.Fatalf("Driver() = %q", s.Driver())
	}
}

func TestMemoryStoreEvictsWhenFull(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2, zap.NewNop())

	_ = s.Set(ctx, "a", "location", "A")
	_ = s.Set(ctx, "b", "location", "B")
	_ = s.Set(ctx, "c", "location", "C")

	if len(s.users) != 2 {
		t.Fatalf("expected 2 users after eviction, got %d", len(s.users))
	}
	if _, ok, _ := s.Get(ctx, "c", "location"); !ok {
		t.Fatalf("newest user must survive eviction")
	}

	// updating an existing nick never evicts
	_ = s.Set(ctx, "c", "latitude", "1")
	if len(s.users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(s.users))
	}
}

func TestSQLiteStore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "settings.db")

	s, err := NewSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer func() {
		_ = s.Close()
		_ = os.Remove(dbPath)
	}()

	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "settings.db")

	s, err := NewSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	if err := s.Set(ctx, "bob", "location", "Paris, France"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_ = s.Close()

	s, err = NewSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	got, ok, err := s.Get(ctx, "Bob", "location")
	if err != nil || !ok || got != "Paris, France" {
		t.Fatalf("Get after reopen = %q, %v, %v", got, ok, err)
	}
}

func TestMySQLStore(t *testing.T) {
	dsn := os.Getenv("STORE_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("STORE_TEST_MYSQL_DSN not set")
	}

	s, err := NewMySQL(context.Background(), dsn)
	if err != nil {
		t.Fatalf("NewMySQL failed: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("STORE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STORE_TEST_POSTGRES_DSN not set")
	}

	s, err := NewPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("NewPostgres failed: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestNewSelectsDriver(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, DriverMemory, "", zap.NewNop())
	if err != nil {
		t.Fatalf("New(memory) failed: %v", err)
	}
	if s.Driver() != DriverMemory {
		t.Fatalf("Driver() = %q", s.Driver())
	}

	s, err = New(ctx, DriverSQLite, filepath.Join(t.TempDir(), "bot.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("New(sqlite) failed: %v", err)
	}
	defer s.Close()
	if s.Driver() != DriverSQLite {
		t.Fatalf("Driver() = %q", s.Driver())
	}

	if _, err := New(ctx, "redis", "", zap.NewNop()); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("New(redis) error = %v, want ErrUnknownDriver", err)
	}
}
