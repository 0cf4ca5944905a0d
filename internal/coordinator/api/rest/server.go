package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/perfinsights/mre/internal/coordinator/core"
	"github.com/perfinsights/mre/internal/shared/config"
	"github.com/perfinsights/mre/internal/shared/logging"
	"github.com/perfinsights/mre/pkg/mre"
)

type Server struct {
	httpServer *http.Server
	runService core.RunService
	logger     logging.Logger
}

func NewServer(cfg config.RESTConfig, runService core.RunService, logger logging.Logger) *Server {
	s := &Server{
		runService: runService,
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/runs", s.submitRun)
	mux.HandleFunc("GET /api/runs", s.listRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.getRun)

	handler := ChainMiddleware(mux,
		RequestIDMiddleware(),
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
	)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) submitRun(w http.ResponseWriter, r *http.Request) {
	var req SubmitRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	run, err := req.ToJobRun()
	if err != nil {
		if errors.Is(err, mre.ErrDecode) {
			s.respondError(w, http.StatusBadRequest, "malformed job descriptor", err.Error())
		} else {
			s.respondError(w, http.StatusBadRequest, "invalid request", err.Error())
		}
		return
	}

	if err := s.runService.SubmitRun(run); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "run rejected", err.Error())
		return
	}

	s.respondJSON(w, http.StatusAccepted, ToSubmitRunResponse(run))
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid run id", err.Error())
		return
	}

	run, err := s.runService.GetRun(id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load run", err.Error())
		return
	}
	if run == nil {
		s.respondError(w, http.StatusNotFound, "run not found", fmt.Sprintf("no run with id %s", id))
		return
	}

	s.respondJSON(w, http.StatusOK, ToGetRunResponse(run))
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRunFilter(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	runs, total, err := s.runService.GetRuns(filter)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list runs", err.Error())
		return
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, ToRunSummary(run))
	}

	resp := ListRunsResponse{
		Runs:   summaries,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	if next := filter.Offset + len(runs); next < total {
		resp.NextOffset = &next
	}

	s.respondJSON(w, http.StatusOK, resp)
}

func parseRunFilter(r *http.Request) (core.RunFilter, error) {
	filter := core.RunFilter{Limit: 50}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, fmt.Errorf("limit must be a positive integer: %q", raw)
		}
		filter.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, fmt.Errorf("offset must be a non-negative integer: %q", raw)
		}
		filter.Offset = offset
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := core.RunStatus(raw)
		switch status {
		case core.RunStatusPending, core.RunStatusRunning, core.RunStatusCompleted, core.RunStatusFailed:
			filter.Status = &status
		default:
			return filter, fmt.Errorf("unknown status: %q", raw)
		}
	}

	return filter, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, errMsg, message string) {
	s.respondJSON(w, code, ErrorResponse{
		Error:   errMsg,
		Message: message,
		Code:    code,
	})
}
