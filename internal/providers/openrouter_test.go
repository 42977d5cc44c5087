package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pricedex/internal/models"
)

const openRouterFixture = `{
  "data": [
    {
      "id": "anthropic/claude-sonnet-4",
      "name": "Anthropic: Claude Sonnet 4",
      "context_length": 200000,
      "pricing": {
        "prompt": "0.000003",
        "completion": "0.000015",
        "input_cache_read": "0.0000003"
      },
      "input_modalities": ["text", "image"],
      "output_modalities": ["text"],
      "supported_parameters": ["tools", "include_reasoning"],
      "top_provider": {"max_completion_tokens": 64000}
    },
    {
      "id": "openrouter/auto",
      "name": "Auto Router",
      "pricing": {"prompt": "-1", "completion": "-1"}
    },
    {
      "id": "",
      "name": "malformed row"
    }
  ]
}`

func TestOpenRouterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openRouterFixture))
	}))
	defer srv.Close()

	a := NewOpenRouterAdapter(srv.URL, 5*time.Second)
	records, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (empty id dropped)", len(records))
	}

	claude := records[0]
	if claude.NativeID != "anthropic/claude-sonnet-4" || claude.Unit != models.UnitPerToken {
		t.Errorf("record = %+v", claude)
	}
	if p := claude.Price(models.PriceInput); p == nil || *p != 0.000003 {
		t.Errorf("input = %v, want raw per-token value", p)
	}
	if p := claude.Price(models.PriceCachedInput); p == nil || *p != 0.0000003 {
		t.Errorf("cached input = %v", p)
	}
	if *claude.ContextLength != 200000 || *claude.MaxOutputTokens != 64000 {
		t.Errorf("metadata = %v/%v", claude.ContextLength, claude.MaxOutputTokens)
	}
	if len(claude.Tags) != 2 || claude.Tags[0] != "tools" {
		t.Errorf("tags = %v", claude.Tags)
	}

	// Sentinel prices pass through untouched for the normalizer to null.
	auto := records[1]
	if p := auto.Price(models.PriceInput); p == nil || *p != -1 {
		t.Errorf("sentinel input = %v, want -1", p)
	}
}

func TestOpenRouterStatusClassification(t *testing.T) {
	tests := []struct {
		status        int
		wantRetryable bool
	}{
		{http.StatusInternalServerError, true},
		{http.StatusTooManyRequests, true},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		a := NewOpenRouterAdapter(srv.URL, 5*time.Second)

		_, err := a.Fetch(context.Background())
		srv.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("status %d: error %T is not a FetchError", tt.status, err)
		}
		if fe.Retryable != tt.wantRetryable {
			t.Errorf("status %d: retryable = %v, want %v", tt.status, fe.Retryable, tt.wantRetryable)
		}
		if fe.Provider != "openrouter" {
			t.Errorf("status %d: provider = %q", tt.status, fe.Provider)
		}
	}
}

func TestOpenRouterNetworkErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	a := NewOpenRouterAdapter(srv.URL, time.Second)
	_, err := a.Fetch(context.Background())

	var fe *FetchError
	if !errors.As(err, &fe) || !fe.Retryable {
		t.Fatalf("err = %v, want retryable FetchError", err)
	}
}
