package rest

import "time"

type SubmitRunRequest struct {
	Name     string         `json:"name"`
	Priority string         `json:"priority,omitempty"` // "high", "normal", "low"
	Job      map[string]any `json:"job"`                // encoded job descriptor
	Input    InputConfig    `json:"input"`
	Output   OutputConfig   `json:"output"`
	Config   RunConfig      `json:"config"`
}

type InputConfig struct {
	Type   string   `json:"type"`   // only "local" is supported
	Paths  []string `json:"paths"`  // Glob patterns or specific paths
	Format string   `json:"format"` // "text", "json", etc.
}

type OutputConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type RunConfig struct {
	NumWorkers  *int `json:"numWorkers,omitempty"`
	NumReducers *int `json:"numReducers,omitempty"`
}

type SubmitRunResponse struct {
	RunID       string    `json:"run_id"`
	JobGUID     string    `json:"job_guid"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	Links       Links     `json:"links"`
}

type Links struct {
	Self string `json:"self"`
}

type GetRunResponse struct {
	RunID      string         `json:"run_id"`
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	Job        map[string]any `json:"job"`
	Timestamps TimestampsInfo `json:"timestamps"`
	Output     OutputInfo     `json:"output"`
	Error      *string        `json:"error,omitempty"`
}

type TimestampsInfo struct {
	Submitted time.Time  `json:"submitted"`
	Started   *time.Time `json:"started"`
	Completed *time.Time `json:"completed"`
}

type OutputInfo struct {
	Location  string `json:"location"`
	Available bool   `json:"available"`
}

type ListRunsResponse struct {
	Runs       []RunSummary `json:"runs"`
	Total      int          `json:"total"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
	NextOffset *int         `json:"next_offset,omitempty"`
}

type RunSummary struct {
	RunID       string     `json:"run_id"`
	Name        string     `json:"name"`
	JobGUID     string     `json:"job_guid"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
