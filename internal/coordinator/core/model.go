package core

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/perfinsights/mre/pkg/mre"
)

type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// JobRun is one execution of a job descriptor: the immutable mre.Job plus
// the mutable run state the coordinator tracks for it.
type JobRun struct {
	ID       uuid.UUID
	Name     string
	Job      *mre.Job
	Status   RunStatus
	Priority RunPriority
	Input    InputConfig
	Output   OutputConfig
	Config   RunConfig

	SubmittedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	Error *string
}

type InputConfig struct {
	Type   string
	Format string
	Paths  []string
}

type OutputConfig struct {
	Type string
	Path string
}

type RunConfig struct {
	NumWorkers  int
	NumReducers int
}

// Clone returns a copy detached from the receiver: mutating either side
// never affects the other. The embedded Job is shared, it is immutable.
func (r *JobRun) Clone() *JobRun {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Input.Paths = slices.Clone(r.Input.Paths)
	if r.StartedAt != nil {
		t := *r.StartedAt
		clone.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		clone.CompletedAt = &t
	}
	if r.Error != nil {
		msg := *r.Error
		clone.Error = &msg
	}
	return &clone
}

// Duration reports how long the run executed, zero while it has not both
// started and finished.
func (r *JobRun) Duration() time.Duration {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt)
}

type RunFilter struct {
	Status *RunStatus
	Limit  int
	Offset int
}
