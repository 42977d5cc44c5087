package models

// Price units as reported by a source. The normalizer converts everything
// to the canonical per-million-tokens unit.
const (
	UnitPerToken   = "per_token"
	UnitPer1K      = "per_1k"
	UnitPerMillion = "per_million"
)

// Price keys used in RawRecord.Prices.
const (
	PriceInput           = "input"
	PriceOutput          = "output"
	PriceCachedInput     = "cached_input"
	PriceCachedWrite     = "cached_write"
	PriceReasoningOutput = "reasoning_output"
	PriceEmbedding       = "embedding"
	PriceBatchInput      = "batch_input"
	PriceBatchOutput     = "batch_output"
)

// RawRecord is a source-native model record produced by a provider adapter.
// Adapters do no unit conversion or vocabulary mapping; they only collect
// what the source exposes. Prices may be negative when the source uses a
// sentinel for "variable/unknown" (OpenRouter reports -1).
type RawRecord struct {
	NativeID         string             `json:"native_id"`
	Name             string             `json:"name,omitempty"`
	Category         string             `json:"category,omitempty"`
	Unit             string             `json:"unit"`
	Prices           map[string]float64 `json:"prices,omitempty"`
	Tags             []string           `json:"tags,omitempty"`
	InputModalities  []string           `json:"input_modalities,omitempty"`
	OutputModalities []string           `json:"output_modalities,omitempty"`
	ContextLength    *int               `json:"context_length,omitempty"`
	MaxOutputTokens  *int               `json:"max_output_tokens,omitempty"`
	IsOpenSource     *bool              `json:"is_open_source,omitempty"`
	Source           string             `json:"source"`
}

// Price returns the price stored under key, or nil if absent.
func (r RawRecord) Price(key string) *float64 {
	if r.Prices == nil {
		return nil
	}
	if v, ok := r.Prices[key]; ok {
		return &v
	}
	return nil
}

// SetPrice stores a price under key, allocating the map on first use.
func (r *RawRecord) SetPrice(key string, v float64) {
	if r.Prices == nil {
		r.Prices = make(map[string]float64)
	}
	r.Prices[key] = v
}
