package service

import (
	"context"
	"time"

	"github.com/perfinsights/mre/internal/coordinator/core"
	"github.com/perfinsights/mre/internal/shared/logging"
)

// RunWatchdog fails runs that have been RUNNING longer than staleTimeout,
// e.g. after a runner goroutine died with the process mid-run and the store
// was reloaded from a snapshot.
type RunWatchdog struct {
	checkInterval time.Duration
	staleTimeout  time.Duration
	runStore      core.RunStore
	logger        logging.Logger
}

func NewRunWatchdog(
	checkInterval time.Duration,
	staleTimeout time.Duration,
	runStore core.RunStore,
	logger logging.Logger,
) *RunWatchdog {
	return &RunWatchdog{
		checkInterval: checkInterval,
		staleTimeout:  staleTimeout,
		runStore:      runStore,
		logger:        logger,
	}
}

func (w *RunWatchdog) Start(ctx context.Context) {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.failStaleRuns()
		}
	}
}

func (w *RunWatchdog) failStaleRuns() {
	running := core.RunStatusRunning
	runs, _, err := w.runStore.GetRuns(core.RunFilter{Status: &running})
	if err != nil {
		w.logger.Error("Failed to list running runs", "error", err)
		return
	}

	threshold := time.Now().UTC().Add(-w.staleTimeout)
	for _, run := range runs {
		if run.StartedAt == nil || run.StartedAt.After(threshold) {
			continue
		}

		now := time.Now().UTC()
		msg := "run exceeded stale timeout"
		run.Status = core.RunStatusFailed
		run.CompletedAt = &now
		run.Error = &msg
		if err := w.runStore.UpdateRun(run); err != nil {
			w.logger.Error("Failed to fail stale run", "run_id", run.ID.String(), "error", err)
			continue
		}

		w.logger.Warn(
			"Failed stale run",
			"run_id", run.ID.String(),
			"started_at", run.StartedAt,
			"stale_timeout", w.staleTimeout.String(),
		)
	}
}
