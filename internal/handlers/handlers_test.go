package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"pricedex/internal/models"
	"pricedex/internal/providers"
	"pricedex/internal/store"
	"pricedex/internal/syncer"
)

type stubAdapter struct {
	id      string
	records []models.RawRecord
}

func (a *stubAdapter) ID() string          { return a.id }
func (a *stubAdapter) DisplayName() string { return strings.ToUpper(a.id) }
func (a *stubAdapter) Strategy() string    { return models.StrategyAPI }
func (a *stubAdapter) Fetch(ctx context.Context) ([]models.RawRecord, error) {
	return a.records, nil
}

func perMillionRecord(id string, input, output float64) models.RawRecord {
	rec := models.RawRecord{NativeID: id, Unit: models.UnitPerMillion}
	rec.SetPrice(models.PriceInput, input)
	rec.SetPrice(models.PriceOutput, output)
	return rec
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	dir := t.TempDir()
	pricing, err := store.NewPricingStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	overrides, err := store.NewOverrideStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	adapter := &stubAdapter{id: "acme", records: []models.RawRecord{
		perMillionRecord("gpt-x", 1000, 2000),
		perMillionRecord("gpt-x-mini", 100, 200),
	}}
	orchestrator := syncer.New([]providers.Adapter{adapter}, pricing, overrides, nil, syncer.Options{
		FetchRetries: 0,
		FetchTimeout: 5 * time.Second,
	})
	if _, err := orchestrator.SyncProvider(context.Background(), "acme"); err != nil {
		t.Fatal(err)
	}

	app := fiber.New(fiber.Config{UnescapePath: true})
	New(pricing, overrides, orchestrator).Register(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]json.RawMessage) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var payload map[string]json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("%s %s: invalid JSON %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, payload
}

func TestListModels(t *testing.T) {
	app := newTestApp(t)

	status, payload := doJSON(t, app, http.MethodGet, "/api/models", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var count int
	json.Unmarshal(payload["count"], &count)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/models?search=mini", "")
	json.Unmarshal(payload["count"], &count)
	if status != http.StatusOK || count != 1 {
		t.Errorf("filtered count = %d, want 1", count)
	}
}

func TestGetModelWildcardID(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/models/acme:gpt-x", nil)
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var m models.Model
	json.NewDecoder(resp.Body).Decode(&m)
	if m.ID != "acme:gpt-x" || *m.Pricing.Input != 1000 {
		t.Errorf("model = %+v", m)
	}

	status, _ := doJSON(t, app, http.MethodGet, "/api/models/acme:nope", "")
	if status != http.StatusNotFound {
		t.Errorf("missing model status = %d, want 404", status)
	}
}

func TestPatchModelOverride(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPatch, "/api/models/acme:gpt-x",
		`{"pricing": {"input": 500, "output": 2000}}`)
	if status != http.StatusOK {
		t.Fatalf("patch status = %d", status)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/models/acme:gpt-x", nil)
	resp, _ := app.Test(req, 10000)
	defer resp.Body.Close()
	var m models.Model
	json.NewDecoder(resp.Body).Decode(&m)
	if *m.Pricing.Input != 500 {
		t.Errorf("input = %v after patch, want 500", *m.Pricing.Input)
	}

	status, _ = doJSON(t, app, http.MethodPatch, "/api/models/acme:gpt-x", `{}`)
	if status != http.StatusBadRequest {
		t.Errorf("empty patch status = %d, want 400", status)
	}

	status, _ = doJSON(t, app, http.MethodPatch, "/api/models/acme:nope", `{"context_length": 5}`)
	if status != http.StatusNotFound {
		t.Errorf("patch of missing model = %d, want 404", status)
	}
}

func TestDeleteOverride(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPatch, "/api/models/acme:gpt-x", `{"context_length": 4096}`)

	status, _ := doJSON(t, app, http.MethodDelete, "/api/models/acme:gpt-x", "")
	if status != http.StatusOK {
		t.Fatalf("delete status = %d", status)
	}
	status, _ = doJSON(t, app, http.MethodDelete, "/api/models/acme:gpt-x", "")
	if status != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", status)
	}
}

func TestListProvidersAndFamilies(t *testing.T) {
	app := newTestApp(t)

	status, payload := doJSON(t, app, http.MethodGet, "/api/providers", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var provs []models.Provider
	json.Unmarshal(payload["providers"], &provs)
	if len(provs) != 1 || provs[0].ID != "acme" || provs[0].ModelCount != 2 {
		t.Errorf("providers = %+v", provs)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/providers?family=gpt-x-mini", "")
	if status != http.StatusOK {
		t.Fatalf("family filter status = %d", status)
	}
	json.Unmarshal(payload["providers"], &provs)
	if len(provs) != 1 || provs[0].ModelCount != 1 {
		t.Errorf("family-filtered providers = %+v, want acme with 1 matching model", provs)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/families", "")
	if status != http.StatusOK {
		t.Fatalf("families status = %d", status)
	}
	var families map[string]int
	json.Unmarshal(payload["families"], &families)
	if families["gpt-x"] != 1 || families["gpt-x-mini"] != 1 {
		t.Errorf("families = %v", families)
	}
}

func TestSyncEndpoint(t *testing.T) {
	app := newTestApp(t)

	status, payload := doJSON(t, app, http.MethodPost, "/api/sync?provider=acme", "")
	if status != http.StatusOK {
		t.Fatalf("sync status = %d", status)
	}
	var results []models.SyncResult
	json.Unmarshal(payload["results"], &results)
	if len(results) != 1 || !results[0].Success || results[0].Provider != "acme" {
		t.Errorf("results = %+v", results)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/api/sync?provider=unknown", "")
	if status != http.StatusBadRequest {
		t.Errorf("unknown provider status = %d, want 400", status)
	}
}

func TestHealthAndStats(t *testing.T) {
	app := newTestApp(t)

	status, payload := doJSON(t, app, http.MethodGet, "/api/health", "")
	if status != http.StatusOK {
		t.Fatalf("health status = %d", status)
	}
	var health string
	json.Unmarshal(payload["status"], &health)
	if health != "healthy" {
		t.Errorf("health = %q", health)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/stats", "")
	if status != http.StatusOK {
		t.Fatalf("stats status = %d", status)
	}
	var total int
	json.Unmarshal(payload["total_models"], &total)
	if total != 2 {
		t.Errorf("total_models = %d", total)
	}
}
