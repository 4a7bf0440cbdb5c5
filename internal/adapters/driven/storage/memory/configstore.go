package memory

import (
	"sync"

	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interfaces.
var (
	_ driven.ConfigStore   = (*ConfigStore)(nil)
	_ driven.ConfigWatcher = (*ConfigStore)(nil)
)

// ConfigStore is an in-memory implementation of driven.ConfigStore.
// Watchers are notified after every Set, which lets tests exercise
// live-reload paths without touching the filesystem.
type ConfigStore struct {
	mu       sync.RWMutex
	values   map[string]any
	watchers map[int]func()
	nextID   int
}

// NewConfigStore creates a new in-memory config store, optionally seeded.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{
		values:   make(map[string]any),
		watchers: make(map[int]func()),
	}
	for _, m := range seed {
		for k, v := range m {
			s.values[k] = v
		}
	}
	return s
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return false
}

// Set stores a configuration value and notifies watchers.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	watchers := make([]func(), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn()
	}
	return nil
}

// Save persists the current configuration (no-op for memory store).
func (s *ConfigStore) Save() error {
	return nil
}

// Load reads configuration from storage (no-op for memory store).
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return ":memory:"
}

// Watch calls onChange after every Set until done is closed.
func (s *ConfigStore) Watch(done <-chan struct{}, onChange func()) error {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = onChange
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	delete(s.watchers, id)
	s.mu.Unlock()
	return nil
}
