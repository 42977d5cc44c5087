package providers

import (
	"context"
	"log"
	"strings"

	"pricedex/internal/models"
)

// GeminiAdapter scrapes Google's Gemini API pricing page. Same fallback
// discipline as the OpenAI scraper: extraction failure degrades to the
// persisted snapshot or the embedded seed, classified as static data.
type GeminiAdapter struct {
	url       string
	browser   tableSource
	snapshots SnapshotStore
	seed      []models.RawRecord
}

// NewGeminiAdapter creates the Google Gemini scraper adapter.
func NewGeminiAdapter(url string, browser tableSource, snapshots SnapshotStore) *GeminiAdapter {
	return &GeminiAdapter{
		url:       url,
		browser:   browser,
		snapshots: snapshots,
		seed:      geminiSeedData(),
	}
}

func (a *GeminiAdapter) ID() string          { return "google_gemini" }
func (a *GeminiAdapter) DisplayName() string { return "Google Gemini" }
func (a *GeminiAdapter) Strategy() string    { return models.StrategyScraper }

// Fetch scrapes live pricing, updating the snapshot on success.
func (a *GeminiAdapter) Fetch(ctx context.Context) ([]models.RawRecord, error) {
	tables, err := a.browser.ExtractTables(ctx, a.url, nil)
	var records []models.RawRecord
	if err == nil {
		records = parseGeminiTables(tables[""])
	}
	if err == nil && len(records) > 0 {
		if saveErr := a.snapshots.SaveSnapshot(a.ID(), records); saveErr != nil {
			log.Printf("⚠️  [GEMINI] Failed to save snapshot: %v", saveErr)
		}
		log.Printf("✅ [GEMINI] Scraped %d models from pricing page", len(records))
		return records, nil
	}
	if err != nil {
		log.Printf("⚠️  [GEMINI] Scrape failed, using fallback data: %v", err)
	} else {
		log.Printf("⚠️  [GEMINI] Scrape returned no models, using fallback data")
	}
	return fallbackRecords(a.ID(), a.snapshots, a.seed)
}

// geminiModelRow reports whether a cell names a Google model family member.
// The pricing page interleaves model tables with rate-limit and quota tables
// whose first columns look similar.
func geminiModelRow(name string) bool {
	lower := strings.ToLower(name)
	for _, family := range []string{"gemini", "gemma", "imagen", "veo", "embedding"} {
		if strings.Contains(lower, family) {
			return true
		}
	}
	return false
}

// parseGeminiTables extracts model rows using header-keyword column
// detection; the page's tables don't share a fixed column order.
func parseGeminiTables(tables []Table) []models.RawRecord {
	byID := make(map[string]bool)
	var records []models.RawRecord

	for _, table := range tables {
		if len(table) < 2 {
			continue
		}
		cols := detectGeminiColumns(table[0])
		if cols.input < 0 && cols.output < 0 {
			continue
		}

		for _, cells := range table[1:] {
			if len(cells) == 0 {
				continue
			}
			name := cells[0]
			if !geminiModelRow(name) || !isValidModelName(name) {
				continue
			}
			nativeID := normalizeScrapedID(name)
			if byID[nativeID] {
				continue
			}

			rec := models.RawRecord{
				NativeID: nativeID,
				Name:     strings.TrimSpace(parenNoteRe.ReplaceAllString(name, " ")),
				Unit:     models.UnitPerMillion,
				Source:   models.SourceScraper,
			}
			setCellPrice(&rec, models.PriceInput, cells, cols.input)
			setCellPrice(&rec, models.PriceOutput, cells, cols.output)
			setCellPrice(&rec, models.PriceCachedInput, cells, cols.cached)
			setCellPrice(&rec, models.PriceBatchInput, cells, cols.batchInput)
			setCellPrice(&rec, models.PriceBatchOutput, cells, cols.batchOutput)
			if cols.context >= 0 && cols.context < len(cells) {
				rec.ContextLength = parseContextLength(cells[cols.context])
			}
			if strings.Contains(strings.ToLower(nativeID), "gemma") {
				rec.IsOpenSource = models.Bool(true)
			}

			if len(rec.Prices) == 0 {
				continue
			}
			byID[nativeID] = true
			records = append(records, rec)
		}
	}
	return records
}

type geminiColumns struct {
	input, output, cached, batchInput, batchOutput, context int
}

func detectGeminiColumns(header []string) geminiColumns {
	cols := geminiColumns{input: -1, output: -1, cached: -1, batchInput: -1, batchOutput: -1, context: -1}
	for i, cell := range header {
		lower := strings.ToLower(cell)
		switch {
		case strings.Contains(lower, "batch") && strings.Contains(lower, "input"):
			cols.batchInput = i
		case strings.Contains(lower, "batch") && strings.Contains(lower, "output"):
			cols.batchOutput = i
		case strings.Contains(lower, "cach"):
			cols.cached = i
		case strings.Contains(lower, "input"):
			cols.input = i
		case strings.Contains(lower, "output"):
			cols.output = i
		case strings.Contains(lower, "context"):
			cols.context = i
		}
	}
	return cols
}

func setCellPrice(rec *models.RawRecord, key string, cells []string, col int) {
	if col < 0 || col >= len(cells) {
		return
	}
	if p := parsePrice(cells[col]); p != nil {
		rec.SetPrice(key, *p)
	}
}
