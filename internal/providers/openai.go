package providers

import (
	"context"
	"fmt"
	"log"

	"pricedex/internal/models"
)

// tableSource abstracts the headless browser so adapter logic is testable
// without Chrome.
type tableSource interface {
	ExtractTables(ctx context.Context, url string, tabs []string) (map[string][]Table, error)
}

// SnapshotStore persists the last successfully scraped raw records so a
// broken page layout degrades to stale data instead of failure.
type SnapshotStore interface {
	SaveSnapshot(provider string, records []models.RawRecord) error
	LoadSnapshot(provider string) ([]models.RawRecord, error)
}

// OpenAIAdapter scrapes the OpenAI pricing docs page. Layout scraping is
// fragile, so extraction failure falls back to the persisted snapshot (or
// the embedded seed data) rather than propagating; fallen-back records are
// classified source=static so freshness stays honest.
type OpenAIAdapter struct {
	url       string
	browser   tableSource
	snapshots SnapshotStore
	seed      []models.RawRecord
}

// NewOpenAIAdapter creates the OpenAI scraper adapter.
func NewOpenAIAdapter(url string, browser tableSource, snapshots SnapshotStore) *OpenAIAdapter {
	return &OpenAIAdapter{
		url:       url,
		browser:   browser,
		snapshots: snapshots,
		seed:      openAISeedData(),
	}
}

func (a *OpenAIAdapter) ID() string          { return "openai" }
func (a *OpenAIAdapter) DisplayName() string { return "OpenAI" }
func (a *OpenAIAdapter) Strategy() string    { return models.StrategyScraper }

// Fetch scrapes live pricing, updating the snapshot on success.
func (a *OpenAIAdapter) Fetch(ctx context.Context) ([]models.RawRecord, error) {
	records, err := a.scrape(ctx)
	if err == nil && len(records) > 0 {
		if saveErr := a.snapshots.SaveSnapshot(a.ID(), records); saveErr != nil {
			log.Printf("⚠️  [OPENAI] Failed to save snapshot: %v", saveErr)
		}
		log.Printf("✅ [OPENAI] Scraped %d models from pricing page", len(records))
		return records, nil
	}
	if err != nil {
		log.Printf("⚠️  [OPENAI] Scrape failed, using fallback data: %v", err)
	} else {
		log.Printf("⚠️  [OPENAI] Scrape returned no models, using fallback data")
	}
	return fallbackRecords(a.ID(), a.snapshots, a.seed)
}

func (a *OpenAIAdapter) scrape(ctx context.Context) ([]models.RawRecord, error) {
	tables, err := a.browser.ExtractTables(ctx, a.url, []string{"Batch"})
	if err != nil {
		return nil, err
	}
	return parseOpenAITables(tables), nil
}

// parseOpenAITables turns the rendered pricing tables into raw records.
// The default page state holds Standard-tier prices; the Batch tab holds
// discounted batch prices for the same model rows.
func parseOpenAITables(tables map[string][]Table) []models.RawRecord {
	byID := make(map[string]*models.RawRecord)
	var order []string

	for _, table := range tables[""] {
		for _, rec := range parseOpenAIRows(table, "Standard") {
			existing, seen := byID[rec.NativeID]
			if !seen {
				r := rec
				byID[rec.NativeID] = &r
				order = append(order, rec.NativeID)
				continue
			}
			// Prefer the row with both input and output prices.
			if rec.Price(models.PriceInput) != nil && rec.Price(models.PriceOutput) != nil &&
				(existing.Price(models.PriceInput) == nil || existing.Price(models.PriceOutput) == nil) {
				r := rec
				byID[rec.NativeID] = &r
			}
		}
	}

	for _, table := range tables["Batch"] {
		for _, rec := range parseOpenAIRows(table, "Batch") {
			existing, seen := byID[rec.NativeID]
			if !seen {
				continue
			}
			if p := rec.Price(models.PriceInput); p != nil {
				existing.SetPrice(models.PriceBatchInput, *p)
			}
			if p := rec.Price(models.PriceOutput); p != nil {
				existing.SetPrice(models.PriceBatchOutput, *p)
			}
		}
	}

	records := make([]models.RawRecord, 0, len(order))
	for _, id := range order {
		records = append(records, *byID[id])
	}
	return records
}

// parseOpenAIRows parses one table. Column layouts vary between sections:
//
//	[Model, Input, Output]
//	[Model, Input, Cached Input, Output]
//	[Model, Input, Output, Context]
//	[Model, Input, Cached Input, Output, Context]
func parseOpenAIRows(table Table, category string) []models.RawRecord {
	var records []models.RawRecord
	if len(table) < 2 {
		return nil
	}

	for _, cells := range table[1:] {
		if len(cells) < 2 {
			continue
		}
		name := cells[0]
		if !isValidModelName(name) {
			continue
		}

		rec := models.RawRecord{
			NativeID: normalizeScrapedID(name),
			Name:     name,
			Category: category,
			Unit:     models.UnitPerMillion,
			Source:   models.SourceScraper,
		}

		if len(cells) >= 3 {
			setPtrPrice(&rec, models.PriceInput, parsePrice(cells[1]))
			setPtrPrice(&rec, models.PriceOutput, parsePrice(cells[2]))
		}
		if len(cells) >= 4 {
			if p := parsePrice(cells[2]); p != nil {
				setPtrPrice(&rec, models.PriceCachedInput, p)
				setPtrPrice(&rec, models.PriceOutput, parsePrice(cells[3]))
			} else {
				rec.ContextLength = parseContextLength(cells[3])
			}
		}
		if len(cells) >= 5 {
			rec.ContextLength = parseContextLength(cells[4])
		}

		if len(rec.Prices) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func setPtrPrice(rec *models.RawRecord, key string, v *float64) {
	if v != nil {
		rec.SetPrice(key, *v)
	}
}

// fallbackRecords loads the last-good snapshot, or the embedded seed when no
// snapshot exists yet, and reclassifies everything as static data.
func fallbackRecords(provider string, snapshots SnapshotStore, seed []models.RawRecord) ([]models.RawRecord, error) {
	snap, err := snapshots.LoadSnapshot(provider)
	if err != nil {
		log.Printf("⚠️  [%s] Failed to load snapshot: %v", provider, err)
	}
	if len(snap) == 0 {
		snap = seed
	}
	if len(snap) == 0 {
		return nil, &FetchError{
			Provider:  provider,
			Retryable: false,
			Err:       fmt.Errorf("extraction failed and no fallback snapshot available"),
		}
	}
	records := make([]models.RawRecord, len(snap))
	for i, rec := range snap {
		rec.Source = models.SourceStatic
		records[i] = rec
	}
	return records, nil
}
