// Package cas implements the persistent step-result store.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/zerr"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
)

// DefaultPath is the default location of the step-result store.
const DefaultPath = "out/cc_state.json"

// Store implements ports.StepResultStore using a flat JSON file keyed by
// step and profile.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.StepResult
}

// NewStore creates a store backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.StepResult),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read step result store")
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.Wrap(err, "failed to unmarshal step result store")
	}

	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal step result store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for step result store")
	}

	//nolint:gosec // path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write step result store")
	}

	return nil
}

// Get retrieves the recorded result for a store key.
func (s *Store) Get(key string) (*domain.StepResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.cache[key]
	if !ok {
		return nil, nil
	}
	return &result, nil
}

// Put stores the result and persists the store.
func (s *Store) Put(result domain.StepResult) error {
	s.mu.Lock()
	s.cache[result.Key()] = result
	s.mu.Unlock()

	return s.save()
}
