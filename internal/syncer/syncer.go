// Package syncer orchestrates provider fetches and commits normalized,
// override-merged results to the pricing store.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"pricedex/internal/metadata"
	"pricedex/internal/models"
	"pricedex/internal/normalize"
	"pricedex/internal/providers"
	"pricedex/internal/store"
)

// Options tunes fetch behavior per run.
type Options struct {
	FetchRetries       int
	FetchTimeout       time.Duration
	ScraperTimeout     time.Duration
	ScraperConcurrency int
}

// Orchestrator fans provider syncs out concurrently while keeping each
// provider's pipeline serialized: overlapping syncs of the same provider
// queue rather than interleave.
type Orchestrator struct {
	adapters []providers.Adapter
	byID     map[string]providers.Adapter

	pricing   *store.PricingStore
	overrides *store.OverrideStore
	enricher  *metadata.Enricher // nil disables enrichment

	opts       Options
	scraperSem chan struct{}

	mu       sync.Mutex
	inFlight map[string]*sync.Mutex
}

// New creates an orchestrator over an explicit adapter list. Each adapter
// is registered with the pricing store so it is listable before first sync.
func New(adapters []providers.Adapter, pricing *store.PricingStore, overrides *store.OverrideStore, enricher *metadata.Enricher, opts Options) *Orchestrator {
	if opts.ScraperConcurrency < 1 {
		opts.ScraperConcurrency = 1
	}
	o := &Orchestrator{
		adapters:   adapters,
		byID:       make(map[string]providers.Adapter, len(adapters)),
		pricing:    pricing,
		overrides:  overrides,
		enricher:   enricher,
		opts:       opts,
		scraperSem: make(chan struct{}, opts.ScraperConcurrency),
		inFlight:   make(map[string]*sync.Mutex),
	}
	for _, a := range adapters {
		o.byID[a.ID()] = a
		pricing.RegisterProvider(store.ProviderInfo{
			ID:            a.ID(),
			DisplayName:   a.DisplayName(),
			FetchStrategy: a.Strategy(),
		})
	}
	return o
}

// Providers returns the registered provider IDs in wiring order.
func (o *Orchestrator) Providers() []string {
	ids := make([]string, len(o.adapters))
	for i, a := range o.adapters {
		ids[i] = a.ID()
	}
	return ids
}

// SyncAll syncs every provider concurrently. One provider failing never
// affects the others; results come back in wiring order.
func (o *Orchestrator) SyncAll(ctx context.Context) []models.SyncResult {
	runID := newRunID()
	log.Printf("🔄 [SYNC:%s] Starting sync for %d providers", runID, len(o.adapters))
	results := make([]models.SyncResult, len(o.adapters))

	var wg sync.WaitGroup
	for i, a := range o.adapters {
		wg.Add(1)
		go func(i int, a providers.Adapter) {
			defer wg.Done()
			results[i] = o.syncOne(ctx, runID, a)
		}(i, a)
	}
	wg.Wait()

	ok := 0
	for _, r := range results {
		if r.Success {
			ok++
		}
	}
	log.Printf("🔄 [SYNC:%s] Completed: %d/%d providers succeeded", runID, ok, len(results))
	return results
}

// SyncProvider syncs a single provider by ID.
func (o *Orchestrator) SyncProvider(ctx context.Context, id string) (models.SyncResult, error) {
	a, ok := o.byID[id]
	if !ok {
		return models.SyncResult{}, fmt.Errorf("unknown provider: %s", id)
	}
	return o.syncOne(ctx, newRunID(), a), nil
}

// newRunID returns a short correlation id for one sync trigger.
func newRunID() string {
	return uuid.NewString()[:8]
}

func (o *Orchestrator) syncOne(ctx context.Context, runID string, a providers.Adapter) models.SyncResult {
	// Serialize per provider so a manual sync issued mid-refresh queues
	// behind the running one instead of racing its commit.
	lock := o.providerLock(a.ID())
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	result := models.SyncResult{RunID: runID, Provider: a.ID()}

	raws, err := o.fetch(ctx, a)
	if err != nil {
		elapsed := time.Since(start)
		result.Error = err.Error()
		result.DurationMS = elapsed.Milliseconds()
		log.Printf("❌ [SYNC] %s failed after %v: %v", a.ID(), elapsed.Round(time.Millisecond), err)
		return result
	}

	ms, dropped := normalize.Normalize(a.ID(), raws)
	if dropped > 0 {
		log.Printf("⚠️  [SYNC] %s: dropped %d records during normalization", a.ID(), dropped)
	}

	if o.enricher != nil {
		o.enricher.Enrich(ctx, a.ID(), ms)
	}

	// Overrides are read inside the commit callback, under the store's write
	// lock, so a patch accepted at any point before the commit still lands
	// in this sync's result.
	merge := func(batch []models.Model) []models.Model {
		return applyOverrides(batch, o.overrides.All())
	}
	if err := o.pricing.ReplaceProviderModels(a.ID(), ms, merge); err != nil {
		result.Error = err.Error()
		result.DurationMS = time.Since(start).Milliseconds()
		return result
	}

	elapsed := time.Since(start)
	result.Success = true
	result.ModelsCount = len(ms)
	result.DurationMS = elapsed.Milliseconds()
	log.Printf("✅ [SYNC] %s: %d models in %v", a.ID(), len(ms), elapsed.Round(time.Millisecond))
	return result
}

// fetch runs the adapter with its strategy's timeout, retrying transient
// failures with exponential backoff. Scraper adapters additionally contend
// for the headless browser semaphore.
func (o *Orchestrator) fetch(ctx context.Context, a providers.Adapter) ([]models.RawRecord, error) {
	timeout := o.opts.FetchTimeout
	if a.Strategy() == models.StrategyScraper {
		select {
		case o.scraperSem <- struct{}{}:
			defer func() { <-o.scraperSem }()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		timeout = o.opts.ScraperTimeout
	}

	var raws []models.RawRecord
	operation := func() error {
		fetchCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		var err error
		raws, err = a.Fetch(fetchCtx)
		if err == nil {
			return nil
		}
		var fe *providers.FetchError
		if errors.As(err, &fe) && !fe.Retryable {
			return backoff.Permanent(err)
		}
		log.Printf("🔁 [SYNC] %s: retrying after error: %v", a.ID(), err)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(o.opts.FetchRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return raws, nil
}

func (o *Orchestrator) providerLock(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.inFlight[id]
	if !ok {
		lock = &sync.Mutex{}
		o.inFlight[id] = lock
	}
	return lock
}

// applyOverrides layers stored overrides onto freshly normalized models.
func applyOverrides(ms []models.Model, overrides map[string]models.Override) []models.Model {
	if len(overrides) == 0 {
		return ms
	}
	for i := range ms {
		if o, ok := overrides[ms[i].ID]; ok {
			ms[i] = models.ApplyOverride(ms[i], o)
		}
	}
	return ms
}
