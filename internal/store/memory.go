package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultMaxUsers = 10000

type memoryEntry struct {
	values    map[string]string
	updatedAt time.Time
}

// MemoryStore keeps settings in process memory. When more than maxUsers nicks
// are stored the least recently updated one is evicted.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*memoryEntry
	maxUsers int
	logger   *zap.Logger
}

func NewMemoryStore(maxUsers int, logger *zap.Logger) *MemoryStore {
	if maxUsers <= 0 {
		maxUsers = defaultMaxUsers
	}
	return &MemoryStore{
		users:    make(map[string]*memoryEntry),
		maxUsers: maxUsers,
		logger:   logger,
	}
}

func (m *MemoryStore) Get(ctx context.Context, nick, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.users[NormalizeNick(nick)]
	if !ok {
		return "", false, nil
	}
	value, ok := entry.values[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, nick, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := NormalizeNick(nick)
	entry, ok := m.users[id]
	if !ok {
		if len(m.users) >= m.maxUsers {
			m.evictOldest()
		}
		entry = &memoryEntry{values: make(map[string]string)}
		m.users[id] = entry
	}
	entry.values[key] = value
	entry.updatedAt = time.Now()

	m.logger.Debug("Setting stored",
		zap.String("nick", id),
		zap.String("key", key))
	return nil
}

func (m *MemoryStore) evictOldest() {
	var oldestNick string
	var oldestTime time.Time

	for nick, entry := range m.users {
		if oldestNick == "" || entry.updatedAt.Before(oldestTime) {
			oldestNick = nick
			oldestTime = entry.updatedAt
		}
	}

	if oldestNick != "" {
		delete(m.users, oldestNick)
		m.logger.Debug("Evicted oldest user settings", zap.String("nick", oldestNick))
	}
}

func (m *MemoryStore) Driver() string { return DriverMemory }

func (m *MemoryStore) Close() error { return nil }
