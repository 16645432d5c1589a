package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/carefinder/backend/internal/domain/providers"
)

const (
	// DefaultSweepInterval is how often the background pass removes
	// expired entries.
	DefaultSweepInterval = 10 * time.Minute

	// DefaultMaxEntries bounds the store; the entry closest to expiry is
	// evicted when an insert would exceed it.
	DefaultMaxEntries = 10000
)

type memoryEntry struct {
	value  []byte
	expiry time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiry)
}

// MemoryAdapter implements the CacheProvider interface with an in-process
// map. Expiry is checked lazily on reads and eagerly by a periodic sweep.
// Capacity is bounded: inserts over the limit evict the entry nearest to
// expiry. Contents are lost on restart.
type MemoryAdapter struct {
	mu         sync.RWMutex
	entries    map[string]*memoryEntry
	maxEntries int

	sweepStop chan struct{}
	stopOnce  sync.Once
}

// NewMemoryAdapter creates an in-memory cache adapter and starts its
// background sweep.
func NewMemoryAdapter(maxEntries int, sweepInterval time.Duration) *MemoryAdapter {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	adapter := &MemoryAdapter{
		entries:    make(map[string]*memoryEntry),
		maxEntries: maxEntries,
		sweepStop:  make(chan struct{}),
	}

	go adapter.sweepLoop(sweepInterval)

	return adapter
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)

// Get retrieves a value from cache. Expired entries are deleted on access.
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.entries[key]
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	if entry.expired(time.Now()) {
		delete(a.entries, key)
		return nil, fmt.Errorf("key not found: %s", key)
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set stores a value in cache with expiration.
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.entries[key]; !exists && len(a.entries) >= a.maxEntries {
		a.evictNearestExpiryLocked()
	}

	a.entries[key] = &memoryEntry{
		value:  stored,
		expiry: time.Now().Add(time.Duration(expirationSeconds) * time.Second),
	}
	return nil
}

// Delete removes a value from cache.
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, key)
	return nil
}

// Exists checks if a live entry is present; expired entries are deleted
// on access.
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.entries[key]
	if !ok {
		return false, nil
	}
	if entry.expired(time.Now()) {
		delete(a.entries, key)
		return false, nil
	}
	return true, nil
}

// Increment adds amount to a numeric entry, creating it with the given
// TTL when absent or expired, and returns the new value.
func (a *MemoryAdapter) Increment(ctx context.Context, key string, amount int64, expirationSeconds int) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	var current int64

	entry, ok := a.entries[key]
	if ok && !entry.expired(now) {
		parsed, err := strconv.ParseInt(string(entry.value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("key %s holds a non-numeric value", key)
		}
		current = parsed
		current += amount
		entry.value = []byte(strconv.FormatInt(current, 10))
		return current, nil
	}

	if !ok && len(a.entries) >= a.maxEntries {
		a.evictNearestExpiryLocked()
	}

	current = amount
	a.entries[key] = &memoryEntry{
		value:  []byte(strconv.FormatInt(current, 10)),
		expiry: now.Add(time.Duration(expirationSeconds) * time.Second),
	}
	return current, nil
}

// Flush removes all entries.
func (a *MemoryAdapter) Flush(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = make(map[string]*memoryEntry)
	return nil
}

// Len returns the number of stored entries, expired or not.
func (a *MemoryAdapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Cleanup runs one eager sweep over all entries, deleting expired ones.
func (a *MemoryAdapter) Cleanup() {
	now := time.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	for key, entry := range a.entries {
		if entry.expired(now) {
			delete(a.entries, key)
		}
	}
}

// Stop terminates the background sweep goroutine.
func (a *MemoryAdapter) Stop() {
	a.stopOnce.Do(func() {
		close(a.sweepStop)
	})
}

func (a *MemoryAdapter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.sweepStop:
			return
		case <-ticker.C:
			a.Cleanup()
		}
	}
}

// evictNearestExpiryLocked drops the entry that would expire soonest.
// Callers must hold the write lock.
func (a *MemoryAdapter) evictNearestExpiryLocked() {
	var victim string
	var nearest time.Time
	for key, entry := range a.entries {
		if victim == "" || entry.expiry.Before(nearest) {
			victim = key
			nearest = entry.expiry
		}
	}
	if victim != "" {
		delete(a.entries, victim)
	}
}
