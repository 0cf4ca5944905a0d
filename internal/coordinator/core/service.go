package core

import "github.com/google/uuid"

// RunService defines the interface for submitting and tracking job runs.
type RunService interface {
	Start()
	Stop()
	SubmitRun(run *JobRun) error
	GetRun(id uuid.UUID) (*JobRun, error)
	GetRuns(filter RunFilter) ([]*JobRun, int, error)
}
