package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/perfinsights/mre/internal/coordinator/core"
)

// InMemoryRunStore keeps runs in process memory. Runs do not survive a
// restart. Every run crossing the store boundary is cloned, so callers can
// read and mutate what they get back without synchronizing with the runner
// goroutines that update the same run.
type InMemoryRunStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*core.JobRun
}

func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{
		runs: make(map[uuid.UUID]*core.JobRun),
	}
}

func (s *InMemoryRunStore) SaveRun(run *core.JobRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run already exists: %s", run.ID)
	}
	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *InMemoryRunStore) UpdateRun(run *core.JobRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; !exists {
		return fmt.Errorf("run not found: %s", run.ID)
	}
	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *InMemoryRunStore) GetRunByID(id uuid.UUID) (*core.JobRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, exists := s.runs[id]
	if !exists {
		return nil, nil
	}
	return run.Clone(), nil
}

func (s *InMemoryRunStore) GetRuns(filter core.RunFilter) ([]*core.JobRun, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []*core.JobRun
	for _, run := range s.runs {
		if filter.Status != nil && run.Status != *filter.Status {
			continue
		}
		filtered = append(filtered, run.Clone())
	}

	// Newest first, map iteration order is not stable.
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].SubmittedAt.After(filtered[j].SubmittedAt)
	})

	total := len(filtered)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}

	return filtered[start:end], total, nil
}
