package store

import (
	"path/filepath"
	"sync"
	"time"

	"pricedex/internal/models"
)

// OverrideStore persists user pricing corrections keyed by canonical model
// ID. Overrides survive syncs; the syncer re-applies them on every commit.
type OverrideStore struct {
	path string

	mu        sync.RWMutex
	overrides map[string]models.Override
}

// NewOverrideStore opens (or initializes) overrides.json under dataDir.
func NewOverrideStore(dataDir string) (*OverrideStore, error) {
	s := &OverrideStore{
		path:      filepath.Join(dataDir, "overrides.json"),
		overrides: make(map[string]models.Override),
	}
	if _, err := readFileJSON(s.path, &s.overrides); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the override for a model ID.
func (s *OverrideStore) Get(id string) (models.Override, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.overrides[id]
	return o, ok
}

// All returns a copy of every stored override.
func (s *OverrideStore) All() map[string]models.Override {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Override, len(s.overrides))
	for id, o := range s.overrides {
		out[id] = o
	}
	return out
}

// Set merges patch into the stored override for id and persists. Fields
// left nil in patch keep their previously stored values, so repeated
// partial patches accumulate.
func (s *OverrideStore) Set(id string, patch models.Override) (models.Override, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.overrides[id]
	if patch.Pricing != nil {
		merged.Pricing = patch.Pricing
	}
	if patch.ContextLength != nil {
		merged.ContextLength = patch.ContextLength
	}
	if patch.MaxOutputTokens != nil {
		merged.MaxOutputTokens = patch.MaxOutputTokens
	}
	if patch.IsOpenSource != nil {
		merged.IsOpenSource = patch.IsOpenSource
	}
	if patch.Capabilities != nil {
		merged.Capabilities = patch.Capabilities
	}
	merged.AppliedAt = time.Now().UTC()

	s.overrides[id] = merged
	return merged, writeFileAtomic(s.path, s.overrides)
}

// Delete removes the override for id, if any, and persists.
func (s *OverrideStore) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.overrides[id]; !ok {
		return false, nil
	}
	delete(s.overrides, id)
	return true, writeFileAtomic(s.path, s.overrides)
}
