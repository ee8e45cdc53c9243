// Package property holds the key/value properties a container exposes to
// bean factories.
//
//	props := property.NewStore()
//	if err := props.LoadFiles("koin.properties"); err != nil { ... }
//	props.SetProperty("server.url", "http://localhost:8080")
//	url := props.String("server.url", "")
package property

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Store is a concurrency-safe property map.
type Store struct {
	mu    sync.RWMutex
	items map[string]any
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{items: make(map[string]any)}
}

// GetProperty returns the value stored under key; ok is false when unset.
func (s *Store) GetProperty(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// SetProperty stores value under key, replacing any previous value.
func (s *Store) SetProperty(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadFiles reads KEY=value files in dotenv syntax. Later files override
// earlier ones. Values are stored as strings.
func (s *Store) LoadFiles(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	values, err := godotenv.Read(files...)
	if err != nil {
		return fmt.Errorf("property: load %s: %w", strings.Join(files, ", "), err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.items[k] = v
	}
	return nil
}

// LoadEnviron imports process environment variables starting with prefix,
// with the prefix stripped from the key. An empty prefix imports everything.
func (s *Store) LoadEnviron(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, prefix) {
			continue
		}
		k = strings.TrimPrefix(k, prefix)
		if k == "" {
			continue
		}
		s.items[k] = v
		n++
	}
	return n
}

// ── Typed getters ────────────────────────────────────────────────────────────

// String returns a string property, falling back to fallback when unset or
// not a string.
func (s *Store) String(key, fallback string) string {
	v, ok := s.GetProperty(key)
	if !ok {
		return fallback
	}
	str, ok := v.(string)
	if !ok || str == "" {
		return fallback
	}
	return str
}

// Int returns an int property. String values are parsed.
func (s *Store) Int(key string, fallback int) int {
	v, ok := s.GetProperty(key)
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return fallback
		}
		return i
	}
	return fallback
}

// Bool returns a bool property. String values are parsed.
func (s *Store) Bool(key string, fallback bool) bool {
	v, ok := s.GetProperty(key)
	if !ok {
		return fallback
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return fallback
		}
		return parsed
	}
	return fallback
}
