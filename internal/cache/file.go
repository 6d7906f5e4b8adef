package cache

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// fileStore persists the whole keyspace as one JSON object on disk. Reads
// parse the full file; writes rewrite it. A missing or corrupt file is
// never an error: reads miss, and the next write recreates the file from
// scratch containing only the key being written.
type fileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

func (f *fileStore) Load(key string) (entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.read()
	if err != nil {
		f.logger.Debug("cache file unreadable", "path", f.path, "error", err)
		return entry{}, false
	}
	e, ok := m[key]
	return e, ok
}

func (f *fileStore) Store(key string, e entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.read()
	if err != nil {
		f.logger.Debug("recreating cache file", "path", f.path, "error", err)
		m = make(map[string]entry, 1)
	}
	m[key] = e

	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o644)
}

func (f *fileStore) Close() error { return nil }

func (f *fileStore) read() (map[string]entry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	var m map[string]entry
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
