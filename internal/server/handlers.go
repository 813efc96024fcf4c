package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/contact-harvester/internal/db"
	"github.com/jonathan/contact-harvester/internal/pipeline"
	"github.com/jonathan/contact-harvester/internal/types"
)

const (
	maxRequestBytes = 1 << 20
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// HarvestRequest represents the request body for /harvest
type HarvestRequest struct {
	Companies []string `json:"companies" validate:"required,min=1,max=500,dive,required,max=200"`
}

// HarvestResponse represents the response for /harvest
type HarvestResponse struct {
	Rows    []types.Row           `json:"rows"`
	Results []types.CompanyResult `json:"results"`
	Summary types.Summary         `json:"summary"`
}

// CacheResponse represents the response for /cache/{company}
type CacheResponse struct {
	Company   string    `json:"company"`
	Emails    []string  `json:"emails"`
	Timestamp time.Time `json:"timestamp"`
	Fresh     bool      `json:"fresh"`
}

// RunResponse represents the response for /runs/{id}
type RunResponse struct {
	Run  *db.Run     `json:"run"`
	Rows []db.RunRow `json:"rows"`
}

// decodeHarvestRequest parses, trims, and validates a harvest request body.
func (s *Server) decodeHarvestRequest(w http.ResponseWriter, r *http.Request) (*HarvestRequest, bool) {
	var req HarvestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	for i, c := range req.Companies {
		req.Companies[i] = strings.TrimSpace(c)
	}
	if err := s.validate.Struct(req); err != nil {
		verr := validationError(err)
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return nil, false
	}
	return &req, true
}

// handleHarvest runs the pipeline and returns all rows at once
func (s *Server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeHarvestRequest(w, r)
	if !ok {
		return
	}

	results := s.harvester.RunWithProgress(r.Context(), req.Companies, nil)
	s.jsonResponse(w, http.StatusOK, HarvestResponse{
		Rows:    types.Rows(results),
		Results: results,
		Summary: types.Summarize(results),
	})
}

// handleHarvestStream runs the pipeline and streams each result as an SSE event
func (s *Server) handleHarvestStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeHarvestRequest(w, r)
	if !ok {
		return
	}

	stream, err := newHarvestStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := s.harvester.RunWithProgress(r.Context(), req.Companies, func(event pipeline.ProgressEvent) {
		if err := stream.result(event); err != nil {
			s.logger.Debug("client stopped reading stream", zap.Error(err))
		}
	})

	if err := stream.complete(results); err != nil {
		s.logger.Debug("failed to write completion event", zap.Error(err))
	}
}

// handleGetCache returns the cached emails for one company
func (s *Server) handleGetCache(w http.ResponseWriter, r *http.Request) {
	company := r.PathValue("company")
	entry, ok := s.cache.Lookup(company)
	if !ok {
		err := &ErrNotFound{Resource: "cache entry", Key: company}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, CacheResponse{
		Company:   company,
		Emails:    entry.Emails,
		Timestamp: entry.Timestamp.Time,
		Fresh:     s.cache.IsFresh(entry),
	})
}

// handleListRuns lists recent harvest runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		err := &ErrUnavailable{Feature: "run history"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			verr := &ErrValidation{Field: "limit", Message: "must be a positive integer"}
			s.errorResponse(w, HTTPStatus(verr), verr.Error())
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one run with its rows
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		err := &ErrUnavailable{Feature: "run history"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	run, err := s.runs.GetRun(r.Context(), runID)
	if err != nil {
		s.logger.Error("failed to get run", zap.String("run_id", runID.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get run")
		return
	}
	if run == nil {
		nf := &ErrNotFound{Resource: "run", Key: runID.String()}
		s.errorResponse(w, HTTPStatus(nf), nf.Error())
		return
	}

	rows, err := s.runs.ListRunRows(r.Context(), runID)
	if err != nil {
		s.logger.Error("failed to list run rows", zap.String("run_id", runID.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list run rows")
		return
	}
	if rows == nil {
		rows = []db.RunRow{}
	}
	s.jsonResponse(w, http.StatusOK, RunResponse{Run: run, Rows: rows})
}
