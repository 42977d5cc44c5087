// Package jobs runs the periodic background refresh.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"pricedex/internal/syncer"
)

// RefreshJob re-syncs all providers on a fixed interval so pricing stays
// current without manual triggers.
type RefreshJob struct {
	scheduler    gocron.Scheduler
	orchestrator *syncer.Orchestrator
	interval     time.Duration
}

// NewRefreshJob creates the periodic refresh. An interval of zero disables
// it; Start and Stop become no-ops.
func NewRefreshJob(orchestrator *syncer.Orchestrator, interval time.Duration) (*RefreshJob, error) {
	j := &RefreshJob{orchestrator: orchestrator, interval: interval}
	if interval <= 0 {
		return j, nil
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	j.scheduler = scheduler

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.run),
		gocron.WithName("pricing-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register refresh job: %w", err)
	}
	return j, nil
}

// Start begins the schedule.
func (j *RefreshJob) Start() {
	if j.scheduler == nil {
		log.Println("⏰ [REFRESH] Periodic refresh disabled")
		return
	}
	j.scheduler.Start()
	log.Printf("⏰ [REFRESH] Periodic refresh every %v", j.interval)
}

// Stop shuts the schedule down, waiting for a running refresh to finish.
func (j *RefreshJob) Stop() {
	if j.scheduler == nil {
		return
	}
	if err := j.scheduler.Shutdown(); err != nil {
		log.Printf("⚠️  [REFRESH] Scheduler shutdown error: %v", err)
	}
}

func (j *RefreshJob) run() {
	log.Println("⏰ [REFRESH] Starting scheduled refresh")
	results := j.orchestrator.SyncAll(context.Background())
	for _, r := range results {
		if !r.Success {
			log.Printf("⚠️  [REFRESH] %s failed: %s", r.Provider, r.Error)
		}
	}
}
