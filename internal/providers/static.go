package providers

import (
	"context"
	"log"

	"pricedex/internal/models"
)

// StaticAdapter serves a fixed, code-embedded record set for providers with
// no public pricing API. It always succeeds.
type StaticAdapter struct {
	id          string
	displayName string
	records     []models.RawRecord
}

// NewStaticAdapter creates an adapter that always returns records.
func NewStaticAdapter(id, displayName string, records []models.RawRecord) *StaticAdapter {
	return &StaticAdapter{id: id, displayName: displayName, records: records}
}

// NewXAIAdapter creates the xAI static adapter. xAI publishes pricing only
// in its docs, so the data is embedded and updated with releases.
func NewXAIAdapter() *StaticAdapter {
	return NewStaticAdapter("xai", "xAI", xaiStaticData())
}

func (a *StaticAdapter) ID() string          { return a.id }
func (a *StaticAdapter) DisplayName() string { return a.displayName }
func (a *StaticAdapter) Strategy() string    { return models.StrategyStatic }

// Fetch returns a copy of the embedded records.
func (a *StaticAdapter) Fetch(ctx context.Context) ([]models.RawRecord, error) {
	records := make([]models.RawRecord, len(a.records))
	copy(records, a.records)
	log.Printf("✅ [%s] Returning %d static models", a.id, len(records))
	return records, nil
}

// staticRecord builds one embedded per-million record.
func staticRecord(id, name string, input, output float64, contextLength int) models.RawRecord {
	rec := models.RawRecord{
		NativeID: id,
		Name:     name,
		Unit:     models.UnitPerMillion,
		Source:   models.SourceStatic,
	}
	rec.SetPrice(models.PriceInput, input)
	rec.SetPrice(models.PriceOutput, output)
	if contextLength > 0 {
		rec.ContextLength = models.Int(contextLength)
	}
	return rec
}

// xaiStaticData mirrors https://docs.x.ai/docs/models.
func xaiStaticData() []models.RawRecord {
	grok4 := staticRecord("grok-4", "Grok 4", 3.00, 15.00, 256000)
	grok4.SetPrice(models.PriceCachedInput, 0.75)

	grok4Fast := staticRecord("grok-4-fast", "Grok 4 Fast", 0.20, 0.50, 2000000)
	grok4Fast.SetPrice(models.PriceCachedInput, 0.05)

	grok3 := staticRecord("grok-3", "Grok 3", 3.00, 15.00, 131072)
	grok3Mini := staticRecord("grok-3-mini", "Grok 3 Mini", 0.30, 0.50, 131072)
	grokCode := staticRecord("grok-code-fast-1", "Grok Code Fast 1", 0.20, 1.50, 256000)
	grok2Vision := staticRecord("grok-2-vision-1212", "Grok 2 Vision", 2.00, 10.00, 32768)

	return []models.RawRecord{grok4, grok4Fast, grok3, grok3Mini, grokCode, grok2Vision}
}
