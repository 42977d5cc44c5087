package store

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"pricedex/internal/models"
	"pricedex/internal/normalize"
)

const dbVersion = "1.0"

// Filter narrows and orders a model listing. Zero values mean "no filter".
type Filter struct {
	Provider   string
	Capability string
	Family     string
	Search     string
	SortBy     string // name, input_price, output_price, context_length
	SortOrder  string // asc (default), desc
}

// ProviderInfo is the static identity of a registered source.
type ProviderInfo struct {
	ID            string
	DisplayName   string
	FetchStrategy string
}

// PricingStore holds the canonical model index in memory and mirrors every
// committed change to pricing.json. Reads never block on provider commits;
// a commit swaps one provider's slice under a short write lock.
type PricingStore struct {
	path string

	mu sync.RWMutex
	db models.PricingDatabase

	providersMu sync.Mutex
	providers   []ProviderInfo
	lastSynced  map[string]time.Time
}

// NewPricingStore opens (or initializes) the index stored under dataDir.
func NewPricingStore(dataDir string) (*PricingStore, error) {
	s := &PricingStore{
		path:       filepath.Join(dataDir, "pricing.json"),
		lastSynced: make(map[string]time.Time),
	}
	loaded, err := readFileJSON(s.path, &s.db)
	if err != nil {
		return nil, err
	}
	if !loaded {
		s.db = models.PricingDatabase{Version: dbVersion}
	}
	for _, m := range s.db.Models {
		if last, ok := s.lastSynced[m.Provider]; !ok || m.UpdatedAt.After(last) {
			s.lastSynced[m.Provider] = m.UpdatedAt
		}
	}
	return s, nil
}

// RegisterProvider declares a source so it appears on the provider listing
// even before its first sync.
func (s *PricingStore) RegisterProvider(info ProviderInfo) {
	s.providersMu.Lock()
	defer s.providersMu.Unlock()
	for i, existing := range s.providers {
		if existing.ID == info.ID {
			s.providers[i] = info
			return
		}
	}
	s.providers = append(s.providers, info)
}

// ReplaceProviderModels atomically swaps all records belonging to one
// provider and persists the index. Other providers' records are untouched.
// A non-nil merge runs on the incoming batch under the write lock, so
// last-moment state (like a just-accepted override) cannot be clobbered by
// a commit that raced it.
func (s *PricingStore) ReplaceProviderModels(provider string, ms []models.Model, merge func([]models.Model) []models.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if merge != nil {
		ms = merge(ms)
	}

	kept := make([]models.Model, 0, len(s.db.Models)+len(ms))
	for _, m := range s.db.Models {
		if m.Provider != provider {
			kept = append(kept, m)
		}
	}
	kept = append(kept, ms...)
	s.db.Models = kept
	s.db.LastRefresh = time.Now().UTC()
	if s.db.Version == "" {
		s.db.Version = dbVersion
	}

	s.providersMu.Lock()
	s.lastSynced[provider] = s.db.LastRefresh
	s.providersMu.Unlock()

	return writeFileAtomic(s.path, &s.db)
}

// UpdateModel applies fn to the model with the given ID in place and
// persists the result. Used to re-apply an override without a resync.
func (s *PricingStore) UpdateModel(id string, fn func(*models.Model)) (models.Model, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.db.Models {
		if s.db.Models[i].ID == id {
			fn(&s.db.Models[i])
			updated := s.db.Models[i]
			return updated, true, writeFileAtomic(s.path, &s.db)
		}
	}
	return models.Model{}, false, nil
}

// GetByID returns the model with the given canonical ID.
func (s *PricingStore) GetByID(id string) (models.Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.db.Models {
		if m.ID == id {
			return m, true
		}
	}
	return models.Model{}, false
}

// GetAll returns the models matching f, sorted per f.
func (s *PricingStore) GetAll(f Filter) []models.Model {
	s.mu.RLock()
	out := make([]models.Model, 0, len(s.db.Models))
	for _, m := range s.db.Models {
		if matchesFilter(m, f) {
			out = append(out, m)
		}
	}
	s.mu.RUnlock()

	sortModels(out, f.SortBy, f.SortOrder)
	return out
}

// GroupByProvider returns all models keyed by provider ID.
func (s *PricingStore) GroupByProvider() map[string][]models.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grouped := make(map[string][]models.Model)
	for _, m := range s.db.Models {
		grouped[m.Provider] = append(grouped[m.Provider], m)
	}
	return grouped
}

// GroupByFamily buckets matching models by derived family name, so the
// same base model can be compared across providers.
func (s *PricingStore) GroupByFamily(f Filter) map[string][]models.Model {
	grouped := make(map[string][]models.Model)
	for _, m := range s.GetAll(f) {
		family := normalize.Family(m.ModelID)
		grouped[family] = append(grouped[family], m)
	}
	return grouped
}

// ListProviders returns every registered provider with live model counts.
func (s *PricingStore) ListProviders() []models.Provider {
	counts := make(map[string]int)
	s.mu.RLock()
	for _, m := range s.db.Models {
		counts[m.Provider]++
	}
	s.mu.RUnlock()

	s.providersMu.Lock()
	defer s.providersMu.Unlock()

	out := make([]models.Provider, 0, len(s.providers))
	for _, info := range s.providers {
		p := models.Provider{
			ID:            info.ID,
			DisplayName:   info.DisplayName,
			FetchStrategy: info.FetchStrategy,
			ModelCount:    counts[info.ID],
		}
		if last, ok := s.lastSynced[info.ID]; ok {
			t := last
			p.LastSyncedAt = &t
		}
		out = append(out, p)
	}
	return out
}

// Stats computes the aggregate summary over all models. Averages ignore
// models with no price for the given direction.
func (s *PricingStore) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	providerSet := make(map[string]bool)
	var inputSum, outputSum float64
	var inputN, outputN int
	for _, m := range s.db.Models {
		providerSet[m.Provider] = true
		if m.Pricing.Input != nil {
			inputSum += *m.Pricing.Input
			inputN++
		}
		if m.Pricing.Output != nil {
			outputSum += *m.Pricing.Output
			outputN++
		}
	}

	st := models.Stats{
		TotalModels:   len(s.db.Models),
		ProviderCount: len(providerSet),
		LastRefresh:   s.db.LastRefresh,
	}
	if inputN > 0 {
		st.AvgInputPrice = inputSum / float64(inputN)
	}
	if outputN > 0 {
		st.AvgOutputPrice = outputSum / float64(outputN)
	}
	return st
}

// LastRefresh returns when any provider last committed.
func (s *PricingStore) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.LastRefresh
}

func matchesFilter(m models.Model, f Filter) bool {
	if f.Provider != "" && m.Provider != f.Provider {
		return false
	}
	if f.Capability != "" {
		found := false
		for _, c := range m.Capabilities {
			if c == f.Capability {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Family != "" && normalize.Family(m.ModelID) != f.Family {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(m.Name), q) &&
			!strings.Contains(strings.ToLower(m.ModelID), q) &&
			!strings.Contains(strings.ToLower(m.ID), q) {
			return false
		}
	}
	return true
}

// sortModels orders in place. Models missing the sort key sink to the end
// regardless of direction.
func sortModels(ms []models.Model, sortBy, order string) {
	desc := order == "desc"

	byFloat := func(get func(models.Model) *float64) {
		sort.SliceStable(ms, func(i, j int) bool {
			a, b := get(ms[i]), get(ms[j])
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			if desc {
				return *a > *b
			}
			return *a < *b
		})
	}

	switch sortBy {
	case "input", "input_price":
		byFloat(func(m models.Model) *float64 { return m.Pricing.Input })
	case "output", "output_price":
		byFloat(func(m models.Model) *float64 { return m.Pricing.Output })
	case "context_length":
		sort.SliceStable(ms, func(i, j int) bool {
			a, b := ms[i].ContextLength, ms[j].ContextLength
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			if desc {
				return *a > *b
			}
			return *a < *b
		})
	case "name", "":
		sort.SliceStable(ms, func(i, j int) bool {
			a, b := strings.ToLower(ms[i].Name), strings.ToLower(ms[j].Name)
			if desc {
				return a > b
			}
			return a < b
		})
	}
}
