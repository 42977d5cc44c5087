package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pricedex/internal/models"
)

func azureTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/prices", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		var resp azurePricesPage
		if page == "" {
			resp = azurePricesPage{
				Items: []azurePriceItem{
					{SkuID: "sku-1", MeterName: "gpt-4o Input Tokens", RetailPrice: 0.0025},
					{SkuID: "sku-1", MeterName: "gpt-4o Output Tokens", RetailPrice: 0.01},
				},
			}
			resp.NextPageLink = "http://" + r.Host + "/prices?page=2"
		} else {
			resp = azurePricesPage{
				Items: []azurePriceItem{
					{SkuID: "sku-1", MeterName: "gpt-4o cached Input Tokens", RetailPrice: 0.00125},
					{SkuID: "sku-2", MeterName: "o3 Input Tokens", RetailPrice: 0.002},
					{SkuID: "untracked", MeterName: "Speech Input", RetailPrice: 1},
				},
			}
		}
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/skus", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(azureCatalog{Skus: []azureSku{
			{SkuID: "sku-1", ModelID: "gpt-4o", ModelName: "GPT-4o", ContextLength: models.Int(128000)},
			{SkuID: "sku-2", ModelID: "o3", ModelName: "o3"},
			{SkuID: "sku-3", ModelID: "priceless", ModelName: "No Prices"},
		}})
	})

	return httptest.NewServer(mux)
}

func TestAzureFetchJoinsPagesAndCatalog(t *testing.T) {
	srv := azureTestServer(t)
	defer srv.Close()

	a := NewAzureAdapter(srv.URL+"/prices", srv.URL+"/skus", 5*time.Second)
	records, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// sku-3 has no price rows and the untracked SKU has no catalog entry.
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	gpt4o := records[0]
	if gpt4o.NativeID != "gpt-4o" || gpt4o.Unit != models.UnitPer1K {
		t.Errorf("record = %+v", gpt4o)
	}
	if p := gpt4o.Price(models.PriceInput); p == nil || *p != 0.0025 {
		t.Errorf("input = %v, want per-1k raw value", p)
	}
	if p := gpt4o.Price(models.PriceCachedInput); p == nil || *p != 0.00125 {
		t.Errorf("cached input from page 2 = %v", p)
	}
	if *gpt4o.ContextLength != 128000 {
		t.Errorf("context = %v", gpt4o.ContextLength)
	}
}

func TestAzureCatalogFailureFailsWholeFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/prices", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(azurePricesPage{Items: []azurePriceItem{{SkuID: "sku-1", MeterName: "Input", RetailPrice: 1}}})
	})
	mux.HandleFunc("/skus", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewAzureAdapter(srv.URL+"/prices", srv.URL+"/skus", 5*time.Second)
	_, err := a.Fetch(context.Background())

	var fe *FetchError
	if !errors.As(err, &fe) || !fe.Retryable {
		t.Fatalf("err = %v, want retryable FetchError; partial results are forbidden", err)
	}
}

func TestAzurePaginationGuard(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/skus" {
			json.NewEncoder(w).Encode(azureCatalog{})
			return
		}
		// Every page points at another page, forever.
		json.NewEncoder(w).Encode(azurePricesPage{NextPageLink: srv.URL + "/prices?page=" + fmt.Sprint(time.Now().UnixNano())})
	}))
	defer srv.Close()

	a := NewAzureAdapter(srv.URL+"/prices", srv.URL+"/skus", 5*time.Second)
	a.maxPages = 5

	_, err := a.Fetch(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Retryable {
		t.Fatalf("err = %v, want non-retryable pagination failure", err)
	}
}

func TestMeterPriceKey(t *testing.T) {
	tests := []struct {
		meter string
		want  string
	}{
		{"gpt-4o-0806 Input Tokens", models.PriceInput},
		{"gpt-4o-0806 Output Tokens", models.PriceOutput},
		{"gpt-4o cached Input Tokens", models.PriceCachedInput},
		{"gpt-4o Batch Input Tokens", models.PriceBatchInput},
		{"gpt-4o Batch Output Tokens", models.PriceBatchOutput},
		{"Text Embedding Ada", models.PriceEmbedding},
		{"Fine Tuning Hour", ""},
	}
	for _, tt := range tests {
		if got := meterPriceKey(tt.meter); got != tt.want {
			t.Errorf("meterPriceKey(%q) = %q, want %q", tt.meter, got, tt.want)
		}
	}
}
