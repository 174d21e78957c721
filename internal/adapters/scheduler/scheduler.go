package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"brigadeportal/internal/application/orchestrators"
	"brigadeportal/internal/domain/synclog"
)

// SyncFunc runs one pull sync. Wired to orchestrators.ExecutePullSync.
type SyncFunc func(ctx context.Context, input orchestrators.PullSyncInput) (synclog.Counts, error)

// Scheduler fires the nightly pull sync on a cron expression. Overlapping
// runs are skipped rather than queued: a slow sync must not stack another
// behind it.
type Scheduler struct {
	brigadeID string
	spec      string
	run       SyncFunc
	cron      *cron.Cron
	running   atomic.Bool
	timeout   time.Duration
}

// New creates a Scheduler. An empty spec disables scheduling; Start becomes
// a no-op.
func New(brigadeID, spec string, timeout time.Duration, run SyncFunc) *Scheduler {
	return &Scheduler{
		brigadeID: brigadeID,
		spec:      spec,
		run:       run,
		cron:      cron.New(),
		timeout:   timeout,
	}
}

// Start registers the cron entry and starts the scheduler in its own
// goroutine.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		slog.Info("sync_scheduler_disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.trigger); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("sync_scheduler_started", "cron", s.spec, "brigade_id", s.brigadeID)
	return nil
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("sync_scheduler_stopped")
}

func (s *Scheduler) trigger() {
	if !s.running.CompareAndSwap(false, true) {
		slog.Warn("sync_already_running", "brigade_id", s.brigadeID)
		return
	}
	defer s.running.Store(false)

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	slog.Info("scheduled_sync_started", "brigade_id", s.brigadeID)
	counts, err := s.run(ctx, orchestrators.PullSyncInput{BrigadeID: s.brigadeID})
	if err != nil {
		slog.Error("scheduled_sync_failed", "brigade_id", s.brigadeID, "error", err)
		return
	}
	slog.Info("scheduled_sync_done", "brigade_id", s.brigadeID,
		"created", counts.Created, "updated", counts.Updated,
		"unchanged", counts.Unchanged, "skipped", counts.Skipped, "failed", counts.Failed)
}
