package core

import (
	"testing"
	"time"
)

func TestJobRun_Duration(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		startedAt   *time.Time
		completedAt *time.Time
		want        time.Duration
	}{
		{
			name:        "both nil returns zero",
			startedAt:   nil,
			completedAt: nil,
			want:        0,
		},
		{
			name:        "not yet completed returns zero",
			startedAt:   ptrTime(now),
			completedAt: nil,
			want:        0,
		},
		{
			name:        "completed run returns duration",
			startedAt:   ptrTime(now),
			completedAt: ptrTime(now.Add(5 * time.Minute)),
			want:        5 * time.Minute,
		},
		{
			name:        "sub-second duration",
			startedAt:   ptrTime(now),
			completedAt: ptrTime(now.Add(500 * time.Millisecond)),
			want:        500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &JobRun{
				StartedAt:   tt.startedAt,
				CompletedAt: tt.completedAt,
			}

			if got := run.Duration(); got != tt.want {
				t.Errorf("JobRun.Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobRun_Clone(t *testing.T) {
	now := time.Now()
	msg := "boom"
	run := &JobRun{
		Status:      RunStatusRunning,
		Input:       InputConfig{Type: "local", Paths: []string{"a.txt", "b.txt"}},
		StartedAt:   ptrTime(now),
		CompletedAt: ptrTime(now.Add(time.Minute)),
		Error:       &msg,
	}

	clone := run.Clone()

	clone.Status = RunStatusFailed
	clone.Input.Paths[0] = "c.txt"
	*clone.StartedAt = now.Add(time.Hour)
	*clone.Error = "other"

	if run.Status != RunStatusRunning {
		t.Errorf("Status = %s, want RUNNING after mutating the clone", run.Status)
	}
	if run.Input.Paths[0] != "a.txt" {
		t.Errorf("Paths[0] = %s, want a.txt", run.Input.Paths[0])
	}
	if !run.StartedAt.Equal(now) {
		t.Errorf("StartedAt = %v, want %v", run.StartedAt, now)
	}
	if *run.Error != "boom" {
		t.Errorf("Error = %q, want boom", *run.Error)
	}

	var nilRun *JobRun
	if nilRun.Clone() != nil {
		t.Error("Expected nil clone of nil run")
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
