package service

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/perfinsights/mre/internal/coordinator/core"
	"github.com/perfinsights/mre/internal/coordinator/storage"
	pkgcore "github.com/perfinsights/mre/pkg/core"
	"github.com/perfinsights/mre/pkg/jobs"
	"github.com/perfinsights/mre/pkg/mre"
)

// mockLogger is a no-op logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any) {}
func (m *mockLogger) Info(msg string, args ...any)  {}
func (m *mockLogger) Warn(msg string, args ...any)  {}
func (m *mockLogger) Error(msg string, args ...any) {}
func (m *mockLogger) Fatal(msg string, args ...any) {}

// capturingLogger records Info calls so tests can assert on log fields
type capturingLogger struct {
	mockLogger
	mu    sync.Mutex
	infos [][]any
}

func (l *capturingLogger) Info(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, append([]any{msg}, args...))
}

// mockRunStore is an in-memory implementation of RunStore for testing. Like
// the real store it copies runs at the boundary so callers never share state.
type mockRunStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*core.JobRun
}

func newMockRunStore() *mockRunStore {
	return &mockRunStore{runs: make(map[uuid.UUID]*core.JobRun)}
}

func (s *mockRunStore) SaveRun(run *core.JobRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *mockRunStore) UpdateRun(run *core.JobRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *mockRunStore) GetRunByID(id uuid.UUID) (*core.JobRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs[id].Clone(), nil
}

func (s *mockRunStore) GetRuns(filter core.RunFilter) ([]*core.JobRun, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var runs []*core.JobRun
	for _, run := range s.runs {
		if filter.Status != nil && run.Status != *filter.Status {
			continue
		}
		runs = append(runs, run.Clone())
	}
	return runs, len(runs), nil
}

func registerEcho(t *testing.T) string {
	t.Helper()
	name := "echo-" + uuid.NewString()
	err := jobs.Register(name, jobs.Function{
		Map: func(key, value string) []pkgcore.KeyValue {
			return []pkgcore.KeyValue{{Key: value, Value: "1"}}
		},
		Reduce: func(key string, values []string) pkgcore.KeyValue {
			return pkgcore.KeyValue{Key: key, Value: values[0]}
		},
	})
	require.NoError(t, err)
	return name
}

func pendingRun(t *testing.T, builtin string, inputPattern, outputDir string) *core.JobRun {
	t.Helper()
	job := mre.NewJob(mre.NewBuiltinHandle(builtin), mre.NewBuiltinHandle(builtin))
	return &core.JobRun{
		ID:          uuid.New(),
		Name:        "test-run",
		Job:         job,
		Priority:    core.RunPriorityNormal,
		Input:       core.InputConfig{Type: "local", Format: "text", Paths: []string{inputPattern}},
		Output:      core.OutputConfig{Type: "local", Path: outputDir},
		Config:      core.RunConfig{NumWorkers: 1, NumReducers: 1},
		SubmittedAt: time.Now().UTC(),
	}
}

func TestRunService_SubmitRun_Validation(t *testing.T) {
	builtin := registerEcho(t)
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("alpha\n"), 0o644))

	svc := NewRunService(newMockRunStore(), 1, &mockLogger{})

	t.Run("rejects non-local input", func(t *testing.T) {
		run := pendingRun(t, builtin, input, tmpDir)
		run.Input.Type = "s3"
		err := svc.SubmitRun(run)
		require.ErrorContains(t, err, "unsupported input type")
	})

	t.Run("rejects unknown builtin", func(t *testing.T) {
		run := pendingRun(t, "no-such-function", input, tmpDir)
		err := svc.SubmitRun(run)
		require.ErrorContains(t, err, "function not found")
	})

	t.Run("rejects script handles", func(t *testing.T) {
		run := pendingRun(t, builtin, input, tmpDir)
		script := mre.NewScriptHandle("Map", mre.ModuleToLoad{Filename: "mapper.py"})
		run.Job = mre.NewJob(script, mre.NewBuiltinHandle(builtin))
		err := svc.SubmitRun(run)
		require.ErrorContains(t, err, "only builtin handles")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		run := pendingRun(t, builtin, filepath.Join(tmpDir, "missing", "*.txt"), tmpDir)
		err := svc.SubmitRun(run)
		require.ErrorContains(t, err, "no input files")
	})
}

func TestRunService_SubmitLogsQueueDepth(t *testing.T) {
	builtin := registerEcho(t)
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("alpha\n"), 0o644))

	logger := &capturingLogger{}
	svc := NewRunService(newMockRunStore(), 1, logger)

	run := pendingRun(t, builtin, input, tmpDir)
	require.NoError(t, svc.SubmitRun(run))

	logger.mu.Lock()
	defer logger.mu.Unlock()
	var found bool
	for _, entry := range logger.infos {
		if entry[0] != "Run submitted" {
			continue
		}
		for i := 1; i < len(entry)-1; i += 2 {
			if entry[i] == "queue_depth" {
				require.Equal(t, 1, entry[i+1])
				found = true
			}
		}
	}
	require.True(t, found, "submit log should carry the queue depth")
}

func TestRunService_ExecutesRun(t *testing.T) {
	builtin := registerEcho(t)
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "in.txt")
	outputDir := filepath.Join(tmpDir, "output")
	require.NoError(t, os.WriteFile(input, []byte("alpha\nbeta\n"), 0o644))

	store := newMockRunStore()
	svc := NewRunService(store, 1, &mockLogger{})
	svc.Start()
	defer svc.Stop()

	run := pendingRun(t, builtin, input, outputDir)
	require.NoError(t, svc.SubmitRun(run))

	require.Eventually(t, func() bool {
		stored, _ := store.GetRunByID(run.ID)
		return stored != nil && stored.Status == core.RunStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	stored, err := svc.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.StartedAt)
	require.NotNil(t, stored.CompletedAt)
	require.Nil(t, stored.Error)

	data, err := os.ReadFile(filepath.Join(outputDir, "part-0000.tsv"))
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.Contains(text, "alpha\t1"))
	require.True(t, strings.Contains(text, "beta\t1"))
}

func TestRunService_ConcurrentReadsDuringExecution(t *testing.T) {
	name := "slow-" + uuid.NewString()
	require.NoError(t, jobs.Register(name, jobs.Function{
		Map: func(key, value string) []pkgcore.KeyValue {
			time.Sleep(20 * time.Millisecond)
			return []pkgcore.KeyValue{{Key: value, Value: "1"}}
		},
		Reduce: func(key string, values []string) pkgcore.KeyValue {
			return pkgcore.KeyValue{Key: key, Value: values[0]}
		},
	}))

	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("alpha\nbeta\n"), 0o644))

	store := storage.NewInMemoryRunStore()
	svc := NewRunService(store, 1, &mockLogger{})
	svc.Start()
	defer svc.Stop()

	run := pendingRun(t, name, input, filepath.Join(tmpDir, "output"))
	require.NoError(t, svc.SubmitRun(run))

	// Poll aggressively while the runner goroutine moves the run through
	// its states. Each read must observe a consistent snapshot.
	require.Eventually(t, func() bool {
		stored, err := svc.GetRun(run.ID)
		if err != nil || stored == nil {
			return false
		}
		if stored.Status == core.RunStatusCompleted {
			require.NotNil(t, stored.StartedAt)
			require.NotNil(t, stored.CompletedAt)
			return true
		}
		return false
	}, 5*time.Second, time.Millisecond)

	// The caller's struct stays detached from the copy the runner executed.
	require.Equal(t, core.RunStatusPending, run.Status)
	require.Nil(t, run.CompletedAt)
}

func TestRunService_RecordsFailure(t *testing.T) {
	name := "broken-" + uuid.NewString()
	require.NoError(t, jobs.Register(name, jobs.Function{
		Map: func(key, value string) []pkgcore.KeyValue {
			panic("unreachable: input disappears before execution")
		},
		Reduce: func(key string, values []string) pkgcore.KeyValue {
			return pkgcore.KeyValue{Key: key, Value: values[0]}
		},
	}))

	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("alpha\n"), 0o644))

	store := newMockRunStore()
	svc := NewRunService(store, 1, &mockLogger{})

	run := pendingRun(t, name, input, filepath.Join(tmpDir, "output"))
	require.NoError(t, svc.SubmitRun(run))

	// Input vanishes between submit-time validation and execution.
	require.NoError(t, os.Remove(input))

	svc.Start()
	defer svc.Stop()

	require.Eventually(t, func() bool {
		stored, _ := store.GetRunByID(run.ID)
		return stored != nil && stored.Status == core.RunStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	stored, err := svc.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Error)
	require.Contains(t, *stored.Error, "no files matched")
}
