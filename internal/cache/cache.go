// Package cache implements a dual-tier TTL cache: a volatile in-process map
// in front of a durable per-key store. Every entry carries an absolute
// expiry; expired entries are treated as absent and never eagerly purged.
// Storage failures degrade to cache misses, never to caller-visible errors.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// entry is one cached value with its absolute expiry in epoch seconds.
// The wire format is a two-element array [value, expires_at] so durable
// stores written by cooperating processes stay interchangeable.
type entry struct {
	Value     json.RawMessage
	ExpiresAt int64
}

func (e entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Value, e.ExpiresAt})
}

func (e *entry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("cache entry: want [value, expires_at], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[1], &e.ExpiresAt); err != nil {
		return fmt.Errorf("cache entry: bad expiry: %w", err)
	}
	e.Value = pair[0]
	return nil
}

// durable is the persistent tier backing a Store. Load reports absence for
// missing, unreadable, or undecodable keys; it never returns an error.
type durable interface {
	Load(key string) (entry, bool)
	Store(key string, e entry) error
	Close() error
}

// Store is a TTL cache safe for concurrent use within one process.
type Store struct {
	mu  sync.RWMutex
	mem map[string]entry

	durable durable
	ttl     time.Duration
	logger  *slog.Logger

	now func() time.Time // overridable in tests
}

func newStore(d durable, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		mem:     make(map[string]entry),
		durable: d,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// NewFileStore returns a Store whose durable tier is a single JSON object
// at path, created on first write. Whole-file read-modify-write per Set:
// fine for one process, last-writer-wins across processes.
func NewFileStore(path string, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return newStore(&fileStore{path: path, logger: logger}, ttl, logger)
}

// NewBoltStore returns a Store whose durable tier is a bbolt database at
// path, updated atomically per key.
func NewBoltStore(path string, ttl time.Duration, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b, err := openBolt(path)
	if err != nil {
		return nil, err
	}
	return newStore(b, ttl, logger), nil
}

// Get looks up key and decodes the cached value into dest. It reports false
// when the key is absent, expired in both tiers, or the stored payload does
// not decode into dest. The volatile tier is consulted first; a durable hit
// is promoted into memory.
func (s *Store) Get(key string, dest any) bool {
	now := s.now()

	s.mu.RLock()
	e, ok := s.mem[key]
	s.mu.RUnlock()

	if ok && !s.expired(e, now) {
		return s.decode(key, e, dest)
	}

	// The durable tier is the source of truth on a volatile miss; another
	// process may have written a fresher entry.
	e, ok = s.durable.Load(key)
	if !ok || s.expired(e, now) {
		return false
	}

	// A concurrent Set may have published a fresher entry while the durable
	// tier was being read; promoting over it would shadow the newer value
	// until it expired.
	s.mu.Lock()
	if cur, ok := s.mem[key]; ok && !s.expired(cur, now) && cur.ExpiresAt >= e.ExpiresAt {
		e = cur
	} else {
		s.mem[key] = e
	}
	s.mu.Unlock()

	return s.decode(key, e, dest)
}

// Set stores value under key with the configured lifetime, replacing any
// prior entry. Both tiers are updated before returning; persistence
// failures are logged and absorbed (this is a cache, not a ledger).
func (s *Store) Set(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("cache value not serializable", "key", key, "error", err)
		return
	}

	e := entry{Value: data, ExpiresAt: s.now().UTC().Add(s.ttl).Unix()}

	if err := s.durable.Store(key, e); err != nil {
		s.logger.Debug("cache persist failed", "key", key, "error", err)
	}

	s.mu.Lock()
	s.mem[key] = e
	s.mu.Unlock()
}

// Close releases the durable tier.
func (s *Store) Close() error {
	return s.durable.Close()
}

// expired uses a strict comparison: an entry is still valid exactly at its
// expiry second.
func (s *Store) expired(e entry, now time.Time) bool {
	return now.UTC().Unix() > e.ExpiresAt
}

func (s *Store) decode(key string, e entry, dest any) bool {
	if err := json.Unmarshal(e.Value, dest); err != nil {
		s.logger.Debug("cached payload undecodable", "key", key, "error", err)
		return false
	}
	return true
}
