package models

import "time"

// Source values for a model record, indicating where its data came from.
const (
	SourceAPI     = "api"
	SourceScraper = "scraper"
	SourceStatic  = "static"
	SourceManual  = "manual"
)

// Fetch strategies for a provider.
const (
	StrategyAPI     = "api"
	StrategyScraper = "scraper"
	StrategyStatic  = "static"
)

// Canonical capability tags.
const (
	CapText            = "text"
	CapVision          = "vision"
	CapAudio           = "audio"
	CapEmbedding       = "embedding"
	CapToolUse         = "tool_use"
	CapReasoning       = "reasoning"
	CapImageGeneration = "image_generation"
	CapVideoGeneration = "video_generation"
	CapTTS             = "tts"
	CapModeration      = "moderation"
	CapWebSearch       = "web_search"
	CapComputerUse     = "computer_use"
	CapOther           = "other"
)

// Pricing holds prices in USD per one million tokens. Nil means
// "not applicable/unknown", which is distinct from zero ("free").
type Pricing struct {
	Input           *float64 `json:"input"`
	Output          *float64 `json:"output"`
	CachedInput     *float64 `json:"cached_input,omitempty"`
	CachedWrite     *float64 `json:"cached_write,omitempty"`
	ReasoningOutput *float64 `json:"reasoning_output,omitempty"`
	Embedding       *float64 `json:"embedding,omitempty"`
}

// BatchPricing holds discounted batch-processing prices, per 1M tokens.
type BatchPricing struct {
	Input  *float64 `json:"input,omitempty"`
	Output *float64 `json:"output,omitempty"`
}

// Model is the canonical, provider-agnostic pricing/capability record.
// ID is "{provider}:{model_id}" and is stable across syncs.
type Model struct {
	ID               string        `json:"id"`
	Provider         string        `json:"provider"`
	ModelID          string        `json:"model_id"`
	Name             string        `json:"name"`
	Pricing          Pricing       `json:"pricing"`
	BatchPricing     *BatchPricing `json:"batch_pricing,omitempty"`
	ContextLength    *int          `json:"context_length,omitempty"`
	MaxOutputTokens  *int          `json:"max_output_tokens,omitempty"`
	IsOpenSource     *bool         `json:"is_open_source,omitempty"`
	Capabilities     []string      `json:"capabilities"`
	InputModalities  []string      `json:"input_modalities"`
	OutputModalities []string      `json:"output_modalities"`
	Source           string        `json:"source"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Provider is the per-source metadata returned on the read surface.
type Provider struct {
	ID            string     `json:"id"`
	DisplayName   string     `json:"display_name"`
	FetchStrategy string     `json:"fetch_strategy"`
	ModelCount    int        `json:"model_count"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
}

// Override is a user-authored partial patch keyed by model ID. A nil field
// is unset and falls through to the freshly fetched value; a set field wins
// on every sync until the override is cleared. Capabilities is a full
// replacement of the set when non-nil.
type Override struct {
	Pricing         *Pricing  `json:"pricing,omitempty"`
	ContextLength   *int      `json:"context_length,omitempty"`
	MaxOutputTokens *int      `json:"max_output_tokens,omitempty"`
	IsOpenSource    *bool     `json:"is_open_source,omitempty"`
	Capabilities    []string  `json:"capabilities,omitempty"`
	AppliedAt       time.Time `json:"applied_at"`
}

// IsEmpty reports whether the override patches nothing.
func (o Override) IsEmpty() bool {
	return o.Pricing == nil && o.ContextLength == nil && o.MaxOutputTokens == nil &&
		o.IsOpenSource == nil && o.Capabilities == nil
}

// SyncResult is the per-provider audit record for one sync invocation.
// RunID ties the results of one trigger together across log lines.
type SyncResult struct {
	RunID       string `json:"run_id"`
	Provider    string `json:"provider"`
	Success     bool   `json:"success"`
	ModelsCount int    `json:"models_count"`
	Error       string `json:"error,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

// PricingDatabase is the root structure of the persisted models index.
type PricingDatabase struct {
	Version     string    `json:"version"`
	LastRefresh time.Time `json:"last_refresh"`
	Models      []Model   `json:"models"`
}

// Stats is the aggregate returned by the /api/stats endpoint.
type Stats struct {
	TotalModels    int       `json:"total_models"`
	ProviderCount  int       `json:"providers"`
	AvgInputPrice  float64   `json:"avg_input_price"`
	AvgOutputPrice float64   `json:"avg_output_price"`
	LastRefresh    time.Time `json:"last_refresh"`
}

// Float64 returns a pointer to v. Convenience for building pricing literals.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
