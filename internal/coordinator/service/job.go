package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/perfinsights/mre/internal/coordinator/core"
	"github.com/perfinsights/mre/internal/shared/logging"
	pkgcore "github.com/perfinsights/mre/pkg/core"
	"github.com/perfinsights/mre/pkg/jobs"
	"github.com/perfinsights/mre/pkg/local"
)

type runService struct {
	runStore core.RunStore
	queue    core.RunPriorityQueue
	pool     *local.Pool

	notify chan struct{}
	stop   chan struct{}
	wg     sync.WaitGroup

	logger logging.Logger
}

// NewRunService builds a run service executing up to numRunners runs
// concurrently. Call Start before submitting and Stop to drain.
func NewRunService(runStore core.RunStore, numRunners int, logger logging.Logger) core.RunService {
	return &runService{
		runStore: runStore,
		queue:    core.NewRunPriorityQueue(),
		pool:     local.NewPool(numRunners),
		notify:   make(chan struct{}, 1),
		stop:     make(chan struct{}),
		logger:   logger,
	}
}

func (s *runService) Start() {
	s.pool.Start()
	s.wg.Go(s.dispatch)
}

func (s *runService) Stop() {
	close(s.stop)
	s.wg.Wait()
	s.pool.Close()
}

// SubmitRun validates the run, records it as pending, and queues it for
// execution. Validation resolves both handles so unknown builtins are
// rejected at submit time instead of failing mid-run.
func (s *runService) SubmitRun(run *core.JobRun) error {
	if run.Input.Type != "local" {
		return fmt.Errorf("unsupported input type: %s", run.Input.Type)
	}

	if _, err := jobs.Resolve(run.Job.MapFunctionHandle()); err != nil {
		return fmt.Errorf("map function: %w", err)
	}
	if _, err := jobs.Resolve(run.Job.ReduceFunctionHandle()); err != nil {
		return fmt.Errorf("reduce function: %w", err)
	}

	inputFiles, err := core.FindLocalFiles(run.Input.Paths)
	if err != nil {
		return err
	}
	if len(inputFiles) == 0 {
		return fmt.Errorf("no input files found for run %s", run.ID)
	}

	run.Status = core.RunStatusPending
	if err := s.runStore.SaveRun(run); err != nil {
		return err
	}
	// The executor gets its own copy: the caller keeps reading the run it
	// submitted while the runner goroutine updates the store's state.
	if err := s.queue.Push(run.Clone()); err != nil {
		return err
	}

	s.logger.Info(
		"Run submitted",
		"run_id", run.ID.String(),
		"job_guid", run.Job.GUID(),
		"name", run.Name,
		"num_input_files", len(inputFiles),
		"queue_depth", s.queue.Len(),
	)

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

func (s *runService) GetRun(id uuid.UUID) (*core.JobRun, error) {
	return s.runStore.GetRunByID(id)
}

func (s *runService) GetRuns(filter core.RunFilter) ([]*core.JobRun, int, error) {
	return s.runStore.GetRuns(filter)
}

// dispatch drains the pending queue onto the runner pool until Stop.
func (s *runService) dispatch() {
	for {
		select {
		case <-s.stop:
			return
		case <-s.notify:
			for {
				run, err := s.queue.Pop()
				if errors.Is(err, core.ErrQueueEmpty) {
					break
				}
				if err != nil {
					s.logger.Error("Failed to pop run", "error", err)
					break
				}
				s.pool.Submit(func() { s.execute(run) })
			}
		}
	}
}

func (s *runService) execute(run *core.JobRun) {
	run.Status = core.RunStatusRunning
	run.StartedAt = ptrTimeNow()
	if err := s.runStore.UpdateRun(run); err != nil {
		s.logger.Error("Failed to mark run running", "run_id", run.ID.String(), "error", err)
	}

	err := s.runEngine(run)

	run.CompletedAt = ptrTimeNow()
	if err != nil {
		run.Status = core.RunStatusFailed
		msg := err.Error()
		run.Error = &msg
		s.logger.Error("Run failed", "run_id", run.ID.String(), "error", err)
	} else {
		run.Status = core.RunStatusCompleted
		s.logger.Info(
			"Run completed",
			"run_id", run.ID.String(),
			"job_guid", run.Job.GUID(),
			"duration_ms", run.Duration().Milliseconds(),
		)
	}
	if err := s.runStore.UpdateRun(run); err != nil {
		s.logger.Error("Failed to record run result", "run_id", run.ID.String(), "error", err)
	}
}

func (s *runService) runEngine(run *core.JobRun) error {
	mapFn, err := jobs.Resolve(run.Job.MapFunctionHandle())
	if err != nil {
		return err
	}
	reduceFn, err := jobs.Resolve(run.Job.ReduceFunctionHandle())
	if err != nil {
		return err
	}

	config := pkgcore.JobConfig{
		Inputs:      run.Input.Paths,
		Output:      run.Output.Path,
		NumWorkers:  run.Config.NumWorkers,
		NumReducers: run.Config.NumReducers,
		MapFunc:     mapFn.Map,
		ReduceFunc:  reduceFn.Reduce,
	}
	return local.NewEngine(config).Run()
}

func ptrTimeNow() *time.Time {
	t := time.Now().UTC()
	return &t
}
