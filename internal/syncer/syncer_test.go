package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"pricedex/internal/models"
	"pricedex/internal/providers"
	"pricedex/internal/store"
)

type fakeAdapter struct {
	id       string
	strategy string
	records  []models.RawRecord
	err      error
	onFetch  func()
	calls    atomic.Int32
}

func (a *fakeAdapter) ID() string          { return a.id }
func (a *fakeAdapter) DisplayName() string { return a.id }
func (a *fakeAdapter) Strategy() string {
	if a.strategy == "" {
		return models.StrategyAPI
	}
	return a.strategy
}

func (a *fakeAdapter) Fetch(ctx context.Context) ([]models.RawRecord, error) {
	a.calls.Add(1)
	if a.onFetch != nil {
		a.onFetch()
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.records, nil
}

func per1kRecord(id string, input, output float64) models.RawRecord {
	rec := models.RawRecord{NativeID: id, Unit: models.UnitPer1K}
	rec.SetPrice(models.PriceInput, input)
	rec.SetPrice(models.PriceOutput, output)
	return rec
}

func newTestOrchestrator(t *testing.T, adapters ...providers.Adapter) (*Orchestrator, *store.PricingStore, *store.OverrideStore) {
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
	o := New(adapters, pricing, overrides, nil, Options{
		FetchRetries: 1,
		FetchTimeout: 5 * time.Second,
	})
	return o, pricing, overrides
}

func TestSyncProviderEndToEnd(t *testing.T) {
	adapter := &fakeAdapter{id: "acme", records: []models.RawRecord{per1kRecord("gpt-x", 1.0, 2.0)}}
	o, pricing, _ := newTestOrchestrator(t, adapter)

	result, err := o.SyncProvider(context.Background(), "acme")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.ModelsCount != 1 {
		t.Fatalf("result = %+v", result)
	}

	m, ok := pricing.GetByID("acme:gpt-x")
	if !ok {
		t.Fatal("acme:gpt-x not committed")
	}
	if *m.Pricing.Input != 1000 || *m.Pricing.Output != 2000 {
		t.Errorf("pricing = %v/%v, want 1000/2000 per million", *m.Pricing.Input, *m.Pricing.Output)
	}
	if m.Source != models.SourceAPI {
		t.Errorf("source = %q, want api", m.Source)
	}
}

func TestSyncAllIsolatesFailures(t *testing.T) {
	good := &fakeAdapter{id: "good", records: []models.RawRecord{per1kRecord("m", 1, 1)}}
	alsoGood := &fakeAdapter{id: "alsogood", records: []models.RawRecord{per1kRecord("n", 2, 2)}}
	bad := &fakeAdapter{id: "bad", err: &providers.FetchError{Provider: "bad", Retryable: false, Err: errors.New("boom")}}
	o, pricing, _ := newTestOrchestrator(t, good, bad, alsoGood)

	results := o.SyncAll(context.Background())
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	byProvider := map[string]models.SyncResult{}
	for _, r := range results {
		byProvider[r.Provider] = r
	}
	if !byProvider["good"].Success || !byProvider["alsogood"].Success {
		t.Error("healthy providers should succeed despite the failing one")
	}
	if byProvider["bad"].Success || byProvider["bad"].Error == "" {
		t.Errorf("bad result = %+v, want failure with message", byProvider["bad"])
	}
	if _, ok := pricing.GetByID("good:m"); !ok {
		t.Error("good provider's models not committed")
	}
	if _, ok := pricing.GetByID("alsogood:n"); !ok {
		t.Error("alsogood provider's models not committed")
	}
}

func TestSyncUnknownProvider(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, &fakeAdapter{id: "acme"})
	if _, err := o.SyncProvider(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRetryOnRetryableError(t *testing.T) {
	adapter := &flakyAdapter{failures: 1}
	o, pricing, _ := newTestOrchestrator(t, adapter)

	result, err := o.SyncProvider(context.Background(), "flaky")
	if err != nil || !result.Success {
		t.Fatalf("result = %+v err = %v", result, err)
	}
	if adapter.calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 (one failure, one retry)", adapter.calls.Load())
	}
	if _, ok := pricing.GetByID("flaky:m"); !ok {
		t.Error("model missing after successful retry")
	}
}

func TestNoRetryOnPermanentError(t *testing.T) {
	adapter := &fakeAdapter{id: "denied", err: &providers.FetchError{Provider: "denied", Retryable: false, Err: errors.New("401")}}
	o, _, _ := newTestOrchestrator(t, adapter)

	result, _ := o.SyncProvider(context.Background(), "denied")
	if result.Success {
		t.Fatal("expected failure")
	}
	if adapter.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retries on permanent errors)", adapter.calls.Load())
	}
}

func TestOverridesSurviveResync(t *testing.T) {
	adapter := &fakeAdapter{id: "acme", records: []models.RawRecord{per1kRecord("gpt-x", 1.0, 2.0)}}
	o, pricing, overrides := newTestOrchestrator(t, adapter)

	if _, err := overrides.Set("acme:gpt-x", models.Override{
		Pricing: &models.Pricing{Input: models.Float64(500), Output: models.Float64(2000)},
	}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if result, err := o.SyncProvider(context.Background(), "acme"); err != nil || !result.Success {
			t.Fatalf("sync %d failed: %+v %v", i, result, err)
		}
	}

	m, _ := pricing.GetByID("acme:gpt-x")
	if *m.Pricing.Input != 500 {
		t.Errorf("input = %v after resync, want overridden 500", *m.Pricing.Input)
	}
}

func TestOverrideDuringSyncLandsInCommit(t *testing.T) {
	adapter := &fakeAdapter{id: "acme", records: []models.RawRecord{per1kRecord("gpt-x", 1.0, 2.0)}}
	o, pricing, overrides := newTestOrchestrator(t, adapter)

	// Install the override mid-sync, after the fetch has started but
	// before the commit.
	adapter.onFetch = func() {
		if _, err := overrides.Set("acme:gpt-x", models.Override{
			ContextLength: models.Int(8192),
		}); err != nil {
			t.Error(err)
		}
	}

	result, err := o.SyncProvider(context.Background(), "acme")
	if err != nil || !result.Success {
		t.Fatalf("result = %+v err = %v", result, err)
	}
	m, _ := pricing.GetByID("acme:gpt-x")
	if m.ContextLength == nil || *m.ContextLength != 8192 {
		t.Errorf("context_length = %v, want the mid-sync override's 8192", m.ContextLength)
	}
}

func TestSyncResultDurationInMilliseconds(t *testing.T) {
	adapter := &fakeAdapter{
		id:      "slow",
		records: []models.RawRecord{per1kRecord("m", 1, 1)},
		onFetch: func() { time.Sleep(30 * time.Millisecond) },
	}
	o, _, _ := newTestOrchestrator(t, adapter)

	result, err := o.SyncProvider(context.Background(), "slow")
	if err != nil || !result.Success {
		t.Fatalf("result = %+v err = %v", result, err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		DurationMS int64 `json:"duration_ms"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.DurationMS < 30 {
		t.Errorf("duration_ms = %d, want >= 30 for a 30ms fetch", decoded.DurationMS)
	}
	// A nanosecond count for the same run would be six orders of
	// magnitude larger.
	if decoded.DurationMS > 60_000 {
		t.Errorf("duration_ms = %d, not a millisecond value", decoded.DurationMS)
	}
}

func TestSyncIdempotence(t *testing.T) {
	adapter := &fakeAdapter{id: "acme", records: []models.RawRecord{
		per1kRecord("a", 1, 2),
		per1kRecord("b", 3, 4),
	}}
	o, pricing, _ := newTestOrchestrator(t, adapter)

	o.SyncProvider(context.Background(), "acme")
	first := pricing.GetAll(store.Filter{})
	o.SyncProvider(context.Background(), "acme")
	second := pricing.GetAll(store.Filter{})

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("model counts = %d then %d, want 2 both times", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("ids diverged: %s vs %s", first[i].ID, second[i].ID)
		}
	}
}

// flakyAdapter fails with a retryable error n times, then succeeds.
type flakyAdapter struct {
	failures int
	calls    atomic.Int32
}

func (a *flakyAdapter) ID() string          { return "flaky" }
func (a *flakyAdapter) DisplayName() string { return "Flaky" }
func (a *flakyAdapter) Strategy() string    { return models.StrategyAPI }

func (a *flakyAdapter) Fetch(ctx context.Context) ([]models.RawRecord, error) {
	n := a.calls.Add(1)
	if int(n) <= a.failures {
		return nil, &providers.FetchError{Provider: "flaky", Retryable: true, Err: errors.New("503")}
	}
	return []models.RawRecord{per1kRecord("m", 1, 1)}, nil
}
