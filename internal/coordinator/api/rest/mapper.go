package rest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/perfinsights/mre/internal/coordinator/core"
	"github.com/perfinsights/mre/pkg/mre"
)

const (
	DefaultNumWorkers  = 4
	DefaultNumReducers = 4
)

// ToJobRun decodes the embedded job descriptor and builds a pending run
// around it. Decode failures surface unchanged so the handler can report
// them as bad requests.
func (req *SubmitRunRequest) ToJobRun() (*core.JobRun, error) {
	job, err := mre.JobFromDict(req.Job)
	if err != nil {
		return nil, err
	}

	priority, err := parsePriority(req.Priority)
	if err != nil {
		return nil, err
	}

	return &core.JobRun{
		ID:       uuid.New(),
		Name:     req.Name,
		Job:      job,
		Status:   core.RunStatusPending,
		Priority: priority,

		Input: core.InputConfig{
			Type:   req.Input.Type,
			Format: req.Input.Format,
			Paths:  req.Input.Paths,
		},
		Output: core.OutputConfig{
			Type: req.Output.Type,
			Path: req.Output.Path,
		},
		Config: core.RunConfig{
			NumWorkers: func() int {
				if req.Config.NumWorkers != nil {
					return *req.Config.NumWorkers
				}
				return DefaultNumWorkers
			}(),
			NumReducers: func() int {
				if req.Config.NumReducers != nil {
					return *req.Config.NumReducers
				}
				return DefaultNumReducers
			}(),
		},

		SubmittedAt: time.Now().UTC(),
	}, nil
}

func parsePriority(s string) (core.RunPriority, error) {
	switch s {
	case "high":
		return core.RunPriorityHigh, nil
	case "", "normal":
		return core.RunPriorityNormal, nil
	case "low":
		return core.RunPriorityLow, nil
	default:
		return 0, fmt.Errorf("unknown priority: %s", s)
	}
}

func ToSubmitRunResponse(run *core.JobRun) SubmitRunResponse {
	return SubmitRunResponse{
		RunID:       run.ID.String(),
		JobGUID:     run.Job.GUID(),
		Status:      string(run.Status),
		SubmittedAt: run.SubmittedAt,
		Links: Links{
			Self: fmt.Sprintf("/api/runs/%s", run.ID),
		},
	}
}

func ToGetRunResponse(run *core.JobRun) GetRunResponse {
	return GetRunResponse{
		RunID:  run.ID.String(),
		Name:   run.Name,
		Status: string(run.Status),
		Job:    run.Job.AsDict(),
		Timestamps: TimestampsInfo{
			Submitted: run.SubmittedAt,
			Started:   run.StartedAt,
			Completed: run.CompletedAt,
		},
		Output: OutputInfo{
			Location:  run.Output.Path,
			Available: run.Status == core.RunStatusCompleted,
		},
		Error: run.Error,
	}
}

func ToRunSummary(run *core.JobRun) RunSummary {
	return RunSummary{
		RunID:       run.ID.String(),
		Name:        run.Name,
		JobGUID:     run.Job.GUID(),
		Status:      string(run.Status),
		SubmittedAt: run.SubmittedAt,
		CompletedAt: run.CompletedAt,
	}
}
