package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"healthpage/internal/core"
	"healthpage/internal/pipeline"
)

// HealthResponse is returned by /health
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// GenerateRequest is the JSON body of POST /api/generate
type GenerateRequest struct {
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// GenerateResponse summarizes a run for API clients
type GenerateResponse struct {
	RunID      string         `json:"run_id"`
	Status     string         `json:"status"`
	Message    string         `json:"message"`
	OutputPath string         `json:"output_path,omitempty"`
	Pairings   []core.Pairing `json:"pairings"`
	Unmatched  []core.Tip     `json:"unmatched,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	Preview    string         `json:"preview,omitempty"`
}

// ErrorResponse is the body of every JSON error
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

// handleFormPage handles GET /
func (s *Server) handleFormPage(w http.ResponseWriter, r *http.Request) {
	s.respondHTML(w, http.StatusOK, formView{Age: 30})
}

// handleGeneratePage handles the form submission
func (s *Server) handleGeneratePage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondHTML(w, http.StatusBadRequest, formView{Message: "Invalid form submission."})
		return
	}

	view := formView{Gender: strings.ToLower(r.FormValue("gender"))}
	age, err := strconv.Atoi(strings.TrimSpace(r.FormValue("age")))
	if err != nil {
		view.Message = "Age must be a whole number."
		s.respondHTML(w, http.StatusBadRequest, view)
		return
	}
	view.Age = age

	res, err := s.runner.Run(r.Context(), pipeline.Request{Age: age, Gender: view.Gender})
	if err != nil {
		view.Message = err.Error()
		s.respondHTML(w, statusForError(err), view)
		return
	}

	view.Message = res.Message
	view.OK = res.Status == pipeline.StatusSuccess
	view.Warnings = res.Warnings
	// Preview is an iframe built from a base64 payload, never from user input.
	view.Preview = template.HTML(res.Preview)
	s.respondHTML(w, http.StatusOK, view)
}

// handleGenerateAPI handles POST /api/generate
func (s *Server) handleGenerateAPI(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body", "")
		return
	}

	res, err := s.runner.Run(r.Context(), pipeline.Request{Age: req.Age, Gender: req.Gender})
	if err != nil {
		var perr *pipeline.Error
		kind := ""
		if errors.As(err, &perr) {
			kind = string(perr.Kind)
		}
		s.respondError(w, statusForError(err), err.Error(), kind)
		return
	}

	s.respondJSON(w, http.StatusOK, GenerateResponse{
		RunID:      res.RunID,
		Status:     string(res.Status),
		Message:    res.Message,
		OutputPath: res.OutputPath,
		Pairings:   res.Pairings,
		Unmatched:  res.Unmatched,
		Warnings:   res.Warnings,
		Preview:    res.Preview,
	})
}

// handleListRuns handles GET /api/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, http.StatusNotFound, "Run history is disabled", "")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer", "")
			return
		}
		limit = n
	}

	runs, err := s.history.ListRuns(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list runs")
		s.respondError(w, http.StatusInternalServerError, "Failed to load runs", "")
		return
	}
	if runs == nil {
		runs = []core.RunRecord{}
	}
	s.respondJSON(w, http.StatusOK, runs)
}

// handleGetRun handles GET /api/runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, http.StatusNotFound, "Run history is disabled", "")
		return
	}

	id := chi.URLParam(r, "id")
	run, err := s.history.GetRun(id)
	if err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("Failed to get run")
		s.respondError(w, http.StatusInternalServerError, "Failed to load run", "")
		return
	}
	if run == nil {
		s.respondError(w, http.StatusNotFound, "Run not found", "")
		return
	}
	s.respondJSON(w, http.StatusOK, run)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInputInvalid):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrGenerationInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrUpstreamFault):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message, kind string) {
	s.respondJSON(w, status, ErrorResponse{Error: message, Kind: kind})
}

func (s *Server) respondHTML(w http.ResponseWriter, status int, view formView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := renderForm(w, view); err != nil {
		s.log.Error().Err(err).Msg("Failed to render form page")
	}
}
