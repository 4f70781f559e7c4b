package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const defaultMemoryTTL = 24 * time.Hour

type memEntry struct {
	data     []byte
	expireAt time.Time
}

func (e *memEntry) expired() bool {
	return time.Now().After(e.expireAt)
}

// MemoryCache implements Service in process memory with LRU eviction.
// Values are stored as JSON so Get behaves the same as the Redis layer.
type MemoryCache struct {
	mu      sync.Mutex
	data    map[string]*memEntry
	access  map[string]time.Time
	maxSize int
	cleanup *time.Ticker
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		data:    make(map[string]*memEntry),
		access:  make(map[string]time.Time),
		maxSize: cfg.MaxSize,
		cleanup: time.NewTicker(cfg.CleanupInterval),
	}
	go mc.cleanupExpired()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if expiration <= 0 {
		expiration = defaultMemoryTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.data) >= mc.maxSize {
		mc.evictLRU()
	}
	mc.data[key] = &memEntry{data: data, expireAt: time.Now().Add(expiration)}
	mc.access[key] = time.Now()
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.data[key]
	if !ok || e.expired() {
		if ok {
			delete(mc.data, key)
			delete(mc.access, key)
		}
		return ErrCacheMiss
	}
	mc.access[key] = time.Now()
	return json.Unmarshal(e.data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		delete(mc.data, key)
		delete(mc.access, key)
	}
	return nil
}

// DeleteByPattern drops the whole memory layer. Pattern matching only exists
// on the Redis layer; a full flush is always a safe over-approximation here.
func (mc *MemoryCache) DeleteByPattern(_ context.Context, _ string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.data = make(map[string]*memEntry)
	mc.access = make(map[string]time.Time)
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		if e, ok := mc.data[key]; ok && !e.expired() {
			return true, nil
		}
	}
	return false, nil
}

func (mc *MemoryCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if e, ok := mc.data[key]; ok {
		e.expireAt = time.Now().Add(expiration)
		return true, nil
	}
	return false, nil
}

// evictLRU removes the least recently used entry. Caller holds mc.mu.
func (mc *MemoryCache) evictLRU() {
	var oldestKey string
	oldestTime := time.Now()
	for key, at := range mc.access {
		if at.Before(oldestTime) {
			oldestTime = at
			oldestKey = key
		}
	}
	if oldestKey != "" {
		delete(mc.data, oldestKey)
		delete(mc.access, oldestKey)
	}
}

func (mc *MemoryCache) cleanupExpired() {
	for range mc.cleanup.C {
		mc.mu.Lock()
		now := time.Now()
		for key, e := range mc.data {
			if now.After(e.expireAt) {
				delete(mc.data, key)
				delete(mc.access, key)
			}
		}
		mc.mu.Unlock()
	}
}

// Close stops the cleanup ticker.
func (mc *MemoryCache) Close() error {
	if mc.cleanup != nil {
		mc.cleanup.Stop()
	}
	return nil
}
