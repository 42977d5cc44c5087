// Package normalize turns source-native raw records into canonical models.
// It is a pure transformation: malformed records are dropped and counted,
// never fatal to the batch.
package normalize

import (
	"fmt"
	"log"
	"strings"
	"time"

	"pricedex/internal/models"
)

// Normalize converts one provider's raw records into canonical models.
// Records without a native id are dropped. Two records normalizing to the
// same id collapse to one, preferring the more complete record; equally
// complete records keep the later one. Returns the models and dropped count.
func Normalize(provider string, raws []models.RawRecord) ([]models.Model, int) {
	now := time.Now()
	byID := make(map[string]models.Model)
	var order []string
	dropped := 0

	for _, raw := range raws {
		m, ok := normalizeOne(provider, raw, now)
		if !ok {
			dropped++
			continue
		}
		existing, seen := byID[m.ID]
		if !seen {
			byID[m.ID] = m
			order = append(order, m.ID)
			continue
		}
		// On equal completeness the later record wins: it is the more
		// recently observed occurrence in the source listing.
		if completeness(m) >= completeness(existing) {
			byID[m.ID] = m
		}
	}

	if dropped > 0 {
		log.Printf("⚠️  [NORMALIZE] %s: dropped %d unparseable record(s)", provider, dropped)
	}

	out := make([]models.Model, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out, dropped
}

func normalizeOne(provider string, raw models.RawRecord, now time.Time) (models.Model, bool) {
	nativeID := strings.TrimSpace(raw.NativeID)
	if nativeID == "" {
		return models.Model{}, false
	}

	name := raw.Name
	if name == "" {
		name = nativeID
	}

	f := factor(raw.Unit)

	pricing := models.Pricing{
		Input:           convertPrice(raw.Price(models.PriceInput), f),
		Output:          convertPrice(raw.Price(models.PriceOutput), f),
		CachedInput:     convertPrice(raw.Price(models.PriceCachedInput), f),
		CachedWrite:     convertPrice(raw.Price(models.PriceCachedWrite), f),
		ReasoningOutput: convertPrice(raw.Price(models.PriceReasoningOutput), f),
		Embedding:       convertPrice(raw.Price(models.PriceEmbedding), f),
	}

	var batch *models.BatchPricing
	batchIn := convertPrice(raw.Price(models.PriceBatchInput), f)
	batchOut := convertPrice(raw.Price(models.PriceBatchOutput), f)
	if batchIn != nil || batchOut != nil {
		batch = &models.BatchPricing{Input: batchIn, Output: batchOut}
	}

	caps := DetectCapabilities(nativeID, raw)
	inMods, outMods := DetectModalities(caps, raw)

	source := raw.Source
	if source == "" {
		source = models.SourceAPI
	}

	return models.Model{
		ID:               fmt.Sprintf("%s:%s", provider, nativeID),
		Provider:         provider,
		ModelID:          nativeID,
		Name:             name,
		Pricing:          pricing,
		BatchPricing:     batch,
		ContextLength:    raw.ContextLength,
		MaxOutputTokens:  raw.MaxOutputTokens,
		IsOpenSource:     raw.IsOpenSource,
		Capabilities:     caps,
		InputModalities:  inMods,
		OutputModalities: outMods,
		Source:           source,
		UpdatedAt:        now,
	}, true
}

// factor returns the multiplier that converts a source unit to USD per 1M tokens.
func factor(unit string) float64 {
	switch unit {
	case models.UnitPerToken:
		return 1_000_000
	case models.UnitPer1K:
		return 1_000
	default:
		return 1
	}
}

// convertPrice applies the unit factor. Negative values are source sentinels
// for "variable/unknown" and map to nil; zero stays zero (free).
func convertPrice(v *float64, f float64) *float64 {
	if v == nil {
		return nil
	}
	if *v < 0 {
		return nil
	}
	if *v == 0 {
		zero := 0.0
		return &zero
	}
	converted := *v * f
	return &converted
}

// completeness scores a model for in-batch deduplication. Non-null input
// pricing dominates, then output pricing, then metadata fields.
func completeness(m models.Model) int {
	score := 0
	if m.Pricing.Input != nil {
		score += 100
	}
	if m.Pricing.Output != nil {
		score += 50
	}
	if m.Pricing.CachedInput != nil {
		score++
	}
	if m.BatchPricing != nil {
		score++
	}
	if m.ContextLength != nil {
		score++
	}
	if m.MaxOutputTokens != nil {
		score++
	}
	return score
}
