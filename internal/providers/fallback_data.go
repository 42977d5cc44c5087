package providers

import "pricedex/internal/models"

// Embedded seeds for the scraper providers. Used only when a scrape fails
// before any snapshot has been persisted; kept intentionally small and
// refreshed with releases, like the xAI static set.

func openAISeedData() []models.RawRecord {
	gpt5 := staticRecord("gpt-5", "GPT-5", 1.25, 10.00, 400000)
	gpt5.SetPrice(models.PriceCachedInput, 0.125)
	gpt5.SetPrice(models.PriceBatchInput, 0.625)
	gpt5.SetPrice(models.PriceBatchOutput, 5.00)

	gpt5Mini := staticRecord("gpt-5-mini", "GPT-5 mini", 0.25, 2.00, 400000)
	gpt5Mini.SetPrice(models.PriceCachedInput, 0.025)

	gpt4o := staticRecord("gpt-4o", "GPT-4o", 2.50, 10.00, 128000)
	gpt4o.SetPrice(models.PriceCachedInput, 1.25)
	gpt4o.SetPrice(models.PriceBatchInput, 1.25)
	gpt4o.SetPrice(models.PriceBatchOutput, 5.00)

	gpt4oMini := staticRecord("gpt-4o-mini", "GPT-4o mini", 0.15, 0.60, 128000)
	gpt4oMini.SetPrice(models.PriceCachedInput, 0.075)

	gpt41 := staticRecord("gpt-4.1", "GPT-4.1", 2.00, 8.00, 1047576)
	gpt41.SetPrice(models.PriceCachedInput, 0.50)

	o3 := staticRecord("o3", "o3", 2.00, 8.00, 200000)
	o3.SetPrice(models.PriceCachedInput, 0.50)

	o4Mini := staticRecord("o4-mini", "o4-mini", 1.10, 4.40, 200000)
	o4Mini.SetPrice(models.PriceCachedInput, 0.275)

	embedding := models.RawRecord{
		NativeID: "text-embedding-3-small",
		Name:     "text-embedding-3-small",
		Unit:     models.UnitPerMillion,
		Source:   models.SourceStatic,
	}
	embedding.SetPrice(models.PriceEmbedding, 0.02)

	return []models.RawRecord{gpt5, gpt5Mini, gpt4o, gpt4oMini, gpt41, o3, o4Mini, embedding}
}

func geminiSeedData() []models.RawRecord {
	pro25 := staticRecord("gemini-2.5-pro", "Gemini 2.5 Pro", 1.25, 10.00, 1048576)
	pro25.SetPrice(models.PriceCachedInput, 0.31)

	flash25 := staticRecord("gemini-2.5-flash", "Gemini 2.5 Flash", 0.30, 2.50, 1048576)
	flash25.SetPrice(models.PriceCachedInput, 0.075)
	flash25.SetPrice(models.PriceBatchInput, 0.15)
	flash25.SetPrice(models.PriceBatchOutput, 1.25)

	flashLite := staticRecord("gemini-2.5-flash-lite", "Gemini 2.5 Flash-Lite", 0.10, 0.40, 1048576)
	flash20 := staticRecord("gemini-2.0-flash", "Gemini 2.0 Flash", 0.10, 0.40, 1048576)

	gemma := staticRecord("gemma-3", "Gemma 3", 0, 0, 131072)
	gemma.IsOpenSource = models.Bool(true)

	embedding := models.RawRecord{
		NativeID: "gemini-embedding-001",
		Name:     "Gemini Embedding",
		Unit:     models.UnitPerMillion,
		Source:   models.SourceStatic,
	}
	embedding.SetPrice(models.PriceEmbedding, 0.15)

	return []models.RawRecord{pro25, flash25, flashLite, flash20, gemma, embedding}
}
