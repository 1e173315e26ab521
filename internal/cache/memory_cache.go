package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// memoryCache is a process-local CacheService used when redis is unavailable and in tests.
// Values are stored JSON-encoded so callers observe the same copy semantics as with redis.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() CacheService {
	return &memoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(entry.data, dest)
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("invalid cache pattern %s: %w", pattern, err)
		}
		if matched {
			delete(m.entries, key)
		}
	}
	return nil
}
