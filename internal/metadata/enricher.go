// Package metadata fills gaps in fetched model records from the community
// LiteLLM catalog. Enrichment is strictly additive: it never replaces a
// value a provider supplied, only fills nils.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"pricedex/internal/models"
)

const catalogCacheKey = "litellm_catalog"

// catalogEntry is one LiteLLM catalog row; only the fields we enrich from.
type catalogEntry struct {
	MaxInputTokens  int    `json:"max_input_tokens"`
	MaxTokens       int    `json:"max_tokens"`
	MaxOutputTokens int    `json:"max_output_tokens"`
	Provider        string `json:"litellm_provider"`
	Mode            string `json:"mode"`
	SupportsVision  bool   `json:"supports_vision"`
}

// Enricher fetches the LiteLLM model catalog and uses it to fill missing
// context windows, output limits, and licensing flags.
type Enricher struct {
	url    string
	client *http.Client
	cache  *cache.Cache
}

// NewEnricher creates an enricher whose catalog is cached for ttl between
// refetches.
func NewEnricher(url string, timeout, ttl time.Duration) *Enricher {
	return &Enricher{
		url:    url,
		client: &http.Client{Timeout: timeout},
		cache:  cache.New(ttl, 10*time.Minute),
	}
}

// Enrich fills gaps in ms in place. A catalog fetch failure is logged and
// skipped; enrichment is best effort and never blocks a sync.
func (e *Enricher) Enrich(ctx context.Context, provider string, ms []models.Model) {
	catalog, err := e.catalog(ctx)
	if err != nil {
		log.Printf("⚠️  [METADATA] Catalog unavailable, skipping enrichment: %v", err)
		return
	}

	enriched := 0
	for i := range ms {
		entry, ok := lookup(catalog, provider, ms[i].ModelID)
		if ok && applyEntry(&ms[i], entry) {
			enriched++
		}
		if ms[i].IsOpenSource == nil {
			if v, known := licenseFromName(ms[i].ModelID); known {
				ms[i].IsOpenSource = models.Bool(v)
			}
		}
	}
	if enriched > 0 {
		log.Printf("📖 [METADATA] Enriched %d/%d models for %s", enriched, len(ms), provider)
	}
}

func (e *Enricher) catalog(ctx context.Context) (map[string]catalogEntry, error) {
	if cached, ok := e.cache.Get(catalogCacheKey); ok {
		return cached.(map[string]catalogEntry), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var catalog map[string]catalogEntry
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	delete(catalog, "sample_spec")

	e.cache.Set(catalogCacheKey, catalog, cache.DefaultExpiration)
	return catalog, nil
}

// lookup resolves a model against the catalog: exact key first, then the
// provider-prefixed form, then a suffix match on the bare model name.
func lookup(catalog map[string]catalogEntry, provider, modelID string) (catalogEntry, bool) {
	if entry, ok := catalog[modelID]; ok {
		return entry, true
	}
	for _, prefix := range catalogPrefixes(provider) {
		if entry, ok := catalog[prefix+"/"+modelID]; ok {
			return entry, true
		}
	}

	bare := modelID
	if i := strings.LastIndex(bare, "/"); i >= 0 {
		bare = bare[i+1:]
	}
	if entry, ok := catalog[bare]; ok {
		return entry, true
	}
	for key, entry := range catalog {
		if strings.HasSuffix(key, "/"+bare) {
			return entry, true
		}
	}
	return catalogEntry{}, false
}

// catalogPrefixes maps our provider IDs to LiteLLM's provider key prefixes.
func catalogPrefixes(provider string) []string {
	switch provider {
	case "openai":
		return []string{"openai"}
	case "azure":
		return []string{"azure", "azure_ai"}
	case "google_gemini":
		return []string{"gemini", "vertex_ai-language-models"}
	case "xai":
		return []string{"xai"}
	default:
		return nil
	}
}

// applyEntry fills missing fields from the catalog entry; reports whether
// anything changed.
func applyEntry(m *models.Model, entry catalogEntry) bool {
	changed := false
	if m.ContextLength == nil {
		if ctx := firstPositive(entry.MaxInputTokens, entry.MaxTokens); ctx > 0 {
			m.ContextLength = models.Int(ctx)
			changed = true
		}
	}
	if m.MaxOutputTokens == nil && entry.MaxOutputTokens > 0 {
		m.MaxOutputTokens = models.Int(entry.MaxOutputTokens)
		changed = true
	}
	return changed
}

func firstPositive(vs ...int) int {
	for _, v := range vs {
		if v > 0 {
			return v
		}
	}
	return 0
}

var openSourceNames = []string{
	"llama", "mistral", "mixtral", "gemma", "qwen", "deepseek", "phi-",
	"falcon", "vicuna", "starcoder", "codellama", "olmo", "glm-", "kimi",
}

var proprietaryNames = []string{
	"gpt-", "o1", "o3", "o4", "claude", "gemini", "grok", "dall-e",
	"whisper", "tts-", "imagen", "veo", "command-r",
}

// licenseFromName classifies well-known model families by name; the second
// return is false when the name matches neither list.
func licenseFromName(modelID string) (isOpen bool, known bool) {
	lower := strings.ToLower(modelID)
	if i := strings.LastIndex(lower, "/"); i >= 0 {
		lower = lower[i+1:]
	}
	for _, pat := range openSourceNames {
		if strings.Contains(lower, pat) {
			return true, true
		}
	}
	for _, pat := range proprietaryNames {
		if strings.HasPrefix(lower, pat) {
			return false, true
		}
	}
	return false, false
}
