package core

import "github.com/google/uuid"

type RunStore interface {
	SaveRun(run *JobRun) error
	UpdateRun(run *JobRun) error
	GetRunByID(id uuid.UUID) (*JobRun, error)
	GetRuns(filter RunFilter) ([]*JobRun, int, error)
}
