package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"pricedex/internal/models"
)

// openRouterResponse mirrors the OpenRouter /api/v1/models payload. Prices
// arrive as decimal strings denominated per token; -1 means variable pricing.
type openRouterResponse struct {
	Data []openRouterModel `json:"data"`
}

type openRouterModel struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	ContextLength    *int              `json:"context_length"`
	Pricing          openRouterPricing `json:"pricing"`
	InputModalities  []string          `json:"input_modalities"`
	OutputModalities []string          `json:"output_modalities"`
	SupportedParams  []string          `json:"supported_parameters"`
	TopProvider      struct {
		MaxCompletionTokens *int `json:"max_completion_tokens"`
	} `json:"top_provider"`
}

type openRouterPricing struct {
	Prompt            string `json:"prompt"`
	Completion        string `json:"completion"`
	InputCacheRead    string `json:"input_cache_read"`
	InputCacheWrite   string `json:"input_cache_write"`
	InternalReasoning string `json:"internal_reasoning"`
}

// OpenRouterAdapter fetches the OpenRouter public model catalog.
type OpenRouterAdapter struct {
	url    string
	client *http.Client
}

// NewOpenRouterAdapter creates the OpenRouter REST adapter.
func NewOpenRouterAdapter(url string, timeout time.Duration) *OpenRouterAdapter {
	return &OpenRouterAdapter{
		url:    url,
		client: newHTTPClient(timeout),
	}
}

func (a *OpenRouterAdapter) ID() string          { return "openrouter" }
func (a *OpenRouterAdapter) DisplayName() string { return "OpenRouter" }
func (a *OpenRouterAdapter) Strategy() string    { return models.StrategyAPI }

// Fetch retrieves the full catalog in one request.
func (a *OpenRouterAdapter) Fetch(ctx context.Context) ([]models.RawRecord, error) {
	body, err := getJSON(ctx, a.client, a.url, a.ID())
	if err != nil {
		return nil, err
	}

	var resp openRouterResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &FetchError{Provider: a.ID(), Retryable: false, Err: fmt.Errorf("failed to parse models response: %w", err)}
	}

	records := make([]models.RawRecord, 0, len(resp.Data))
	for _, m := range resp.Data {
		if m.ID == "" {
			continue
		}
		rec := models.RawRecord{
			NativeID:         m.ID,
			Name:             m.Name,
			Unit:             models.UnitPerToken,
			Tags:             m.SupportedParams,
			InputModalities:  m.InputModalities,
			OutputModalities: m.OutputModalities,
			ContextLength:    m.ContextLength,
			MaxOutputTokens:  m.TopProvider.MaxCompletionTokens,
			Source:           models.SourceAPI,
		}
		setTokenPrice(&rec, models.PriceInput, m.Pricing.Prompt)
		setTokenPrice(&rec, models.PriceOutput, m.Pricing.Completion)
		setTokenPrice(&rec, models.PriceCachedInput, m.Pricing.InputCacheRead)
		setTokenPrice(&rec, models.PriceCachedWrite, m.Pricing.InputCacheWrite)
		setTokenPrice(&rec, models.PriceReasoningOutput, m.Pricing.InternalReasoning)
		records = append(records, rec)
	}

	log.Printf("✅ [OPENROUTER] Fetched %d models", len(records))
	return records, nil
}

// setTokenPrice parses an OpenRouter decimal-string price. Unparseable
// values are skipped; negative sentinels pass through for the normalizer
// to null out.
func setTokenPrice(rec *models.RawRecord, key, value string) {
	if value == "" {
		return
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return
	}
	rec.SetPrice(key, v)
}

// getJSON performs a GET and returns the body, classifying transport and
// status failures as FetchError.
func getJSON(ctx context.Context, client *http.Client, url, provider string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Provider: provider, Retryable: false, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		// Network errors and timeouts are transient.
		return nil, &FetchError{Provider: provider, Retryable: true, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{
			Provider:  provider,
			Retryable: retryableStatus(resp.StatusCode),
			Err:       fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Provider: provider, Retryable: true, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return body, nil
}
