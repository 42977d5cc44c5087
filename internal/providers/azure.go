package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"pricedex/internal/models"
)

// azurePricesPage is one page of the retail prices API. Prices are
// denominated per 1K tokens and keyed to a SKU; model identity lives in a
// separate SKU catalog, so the adapter joins the two before returning.
type azurePricesPage struct {
	Items        []azurePriceItem `json:"Items"`
	NextPageLink string           `json:"NextPageLink"`
}

type azurePriceItem struct {
	SkuID       string  `json:"skuId"`
	MeterName   string  `json:"meterName"`
	RetailPrice float64 `json:"retailPrice"`
}

type azureCatalog struct {
	Skus []azureSku `json:"skus"`
}

type azureSku struct {
	SkuID           string `json:"skuId"`
	ModelID         string `json:"modelId"`
	ModelName       string `json:"modelName"`
	ContextLength   *int   `json:"contextLength"`
	MaxOutputTokens *int   `json:"maxOutputTokens"`
}

// AzureAdapter fetches Azure OpenAI retail pricing. The price list paginates
// via NextPageLink; the SKU catalog is fetched concurrently and joined on
// SKU id. Losing either half is a total adapter failure, never a partial
// result.
type AzureAdapter struct {
	pricesURL  string
	catalogURL string
	client     *http.Client
	limiter    *rate.Limiter
	maxPages   int
}

// NewAzureAdapter creates the Azure REST adapter. Pagination can issue tens
// of requests per sync, so page fetches go through a rate limiter to stay
// well under the retail API's throttling threshold.
func NewAzureAdapter(pricesURL, catalogURL string, timeout time.Duration) *AzureAdapter {
	return &AzureAdapter{
		pricesURL:  pricesURL,
		catalogURL: catalogURL,
		client:     newHTTPClient(timeout),
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		maxPages:   50,
	}
}

func (a *AzureAdapter) ID() string          { return "azure" }
func (a *AzureAdapter) DisplayName() string { return "Azure OpenAI" }
func (a *AzureAdapter) Strategy() string    { return models.StrategyAPI }

// Fetch retrieves catalog and price list concurrently, then joins them.
func (a *AzureAdapter) Fetch(ctx context.Context) ([]models.RawRecord, error) {
	type catalogResult struct {
		skus []azureSku
		err  error
	}
	catalogCh := make(chan catalogResult, 1)
	go func() {
		skus, err := a.fetchCatalog(ctx)
		catalogCh <- catalogResult{skus: skus, err: err}
	}()

	items, err := a.fetchAllPrices(ctx)
	cat := <-catalogCh

	if err != nil {
		return nil, err
	}
	if cat.err != nil {
		return nil, cat.err
	}

	records := a.join(cat.skus, items)
	log.Printf("✅ [AZURE] Joined %d price rows into %d models", len(items), len(records))
	return records, nil
}

// fetchAllPrices follows NextPageLink until exhaustion, concatenating pages.
func (a *AzureAdapter) fetchAllPrices(ctx context.Context) ([]azurePriceItem, error) {
	var items []azurePriceItem
	url := a.pricesURL

	for page := 0; url != ""; page++ {
		if page >= a.maxPages {
			return nil, &FetchError{Provider: a.ID(), Retryable: false, Err: fmt.Errorf("pagination did not terminate after %d pages", a.maxPages)}
		}
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Provider: a.ID(), Retryable: true, Err: err}
		}
		body, err := getJSON(ctx, a.client, url, a.ID())
		if err != nil {
			return nil, err
		}
		var p azurePricesPage
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, &FetchError{Provider: a.ID(), Retryable: false, Err: fmt.Errorf("failed to parse prices page: %w", err)}
		}
		items = append(items, p.Items...)
		url = p.NextPageLink
	}
	return items, nil
}

func (a *AzureAdapter) fetchCatalog(ctx context.Context) ([]azureSku, error) {
	body, err := getJSON(ctx, a.client, a.catalogURL, a.ID())
	if err != nil {
		return nil, err
	}
	var cat azureCatalog
	if err := json.Unmarshal(body, &cat); err != nil {
		return nil, &FetchError{Provider: a.ID(), Retryable: false, Err: fmt.Errorf("failed to parse sku catalog: %w", err)}
	}
	return cat.Skus, nil
}

// join merges price rows into one record per catalog SKU. Price rows whose
// SKU is absent from the catalog are dropped; they belong to services this
// system does not track.
func (a *AzureAdapter) join(skus []azureSku, items []azurePriceItem) []models.RawRecord {
	bySku := make(map[string]*models.RawRecord, len(skus))
	var order []string

	for _, sku := range skus {
		if sku.SkuID == "" || sku.ModelID == "" {
			continue
		}
		rec := &models.RawRecord{
			NativeID:        sku.ModelID,
			Name:            sku.ModelName,
			Unit:            models.UnitPer1K,
			ContextLength:   sku.ContextLength,
			MaxOutputTokens: sku.MaxOutputTokens,
			Source:          models.SourceAPI,
		}
		bySku[sku.SkuID] = rec
		order = append(order, sku.SkuID)
	}

	for _, item := range items {
		rec, ok := bySku[item.SkuID]
		if !ok {
			continue
		}
		if key := meterPriceKey(item.MeterName); key != "" {
			rec.SetPrice(key, item.RetailPrice)
		}
	}

	records := make([]models.RawRecord, 0, len(order))
	for _, skuID := range order {
		rec := bySku[skuID]
		if len(rec.Prices) == 0 {
			// Catalog entry with no price rows; nothing to report.
			continue
		}
		records = append(records, *rec)
	}
	return records
}

// meterPriceKey maps an Azure meter name onto a canonical price key.
func meterPriceKey(meterName string) string {
	name := strings.ToLower(meterName)
	switch {
	case strings.Contains(name, "cached input"):
		return models.PriceCachedInput
	case strings.Contains(name, "batch input"):
		return models.PriceBatchInput
	case strings.Contains(name, "batch output"):
		return models.PriceBatchOutput
	case strings.Contains(name, "input"):
		return models.PriceInput
	case strings.Contains(name, "output"):
		return models.PriceOutput
	case strings.Contains(name, "embedding"):
		return models.PriceEmbedding
	default:
		return ""
	}
}
