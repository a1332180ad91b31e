package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/loadorder/pkg/buildinfo"
	"github.com/matzehuels/loadorder/pkg/cache"
	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/history"
	pkgio "github.com/matzehuels/loadorder/pkg/io"
	"github.com/matzehuels/loadorder/pkg/lint"
	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/pipeline"
	"github.com/matzehuels/loadorder/pkg/render"
	"github.com/matzehuels/loadorder/pkg/solver"
)

// SolveRequest is the body of POST /v1/plans.
type SolveRequest struct {
	Modules  []pkgio.ModuleDocument `json:"modules"`
	Policy   string                 `json:"policy,omitempty"`
	Refresh  bool                   `json:"refresh,omitempty"`
	Formats  []string               `json:"formats,omitempty"` // extra renderings; the plan is always returned
	Detailed bool                   `json:"detailed,omitempty"`
}

// SolveResponse is the body of a successful POST /v1/plans.
type SolveResponse struct {
	ID        string             `json:"id,omitempty"`
	InputHash string             `json:"inputHash"`
	CacheHit  bool               `json:"cacheHit"`
	Plan      pkgio.PlanDocument `json:"plan"`
	Artifacts map[string]string  `json:"artifacts,omitempty"`
}

// LintRequest is the body of POST /v1/lint.
type LintRequest struct {
	Modules []pkgio.ModuleDocument `json:"modules"`
}

// LintResponse is the body of POST /v1/lint.
type LintResponse struct {
	OK       bool           `json:"ok"`
	Findings []lint.Finding `json:"findings"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ID        string `json:"id,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	policy, err := solver.ParseMatchPolicy(req.Policy)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if err := pipeline.ValidateFormats(req.Formats); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	ds, err := pkgio.DescriptorsDocument{Modules: req.Modules}.Descriptors()
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	runner := s.runner
	if policy != runner.Solver.Policy() {
		rr := *runner
		rr.Solver = solver.New(solver.WithMatchPolicy(policy))
		runner = &rr
	}
	ctx := r.Context()
	plan, hit, solveErr := runner.Solve(ctx, ds, req.Refresh)

	var doc *pkgio.PlanDocument
	if solveErr == nil {
		d := pkgio.NewPlanDocument(plan)
		doc = &d
	}
	id := s.record(r, ds, policy.String(), hit, doc, solveErr)
	if solveErr != nil {
		s.writeError(w, r, solveErr, id)
		return
	}

	resp := SolveResponse{ID: id, InputHash: inputHash(ds), CacheHit: hit, Plan: *doc}
	if len(req.Formats) > 0 {
		artifacts, err := runner.Render(ctx, plan, req.Formats, render.Options{Detailed: req.Detailed})
		if err != nil {
			s.writeError(w, r, err, id)
			return
		}
		resp.Artifacts = make(map[string]string, len(artifacts))
		for k, v := range artifacts {
			resp.Artifacts[k] = string(v)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// record stores the outcome when a history store is configured and returns
// the record id. Storage failures are logged, not returned to the client.
func (s *Server) record(r *http.Request, ds []module.Descriptor, policy string, hit bool, doc *pkgio.PlanDocument, solveErr error) string {
	if s.history == nil {
		return ""
	}
	rec := history.NewRecord(inputHash(ds), policy, len(ds), doc, solveErr)
	rec.CacheHit = hit
	if err := s.history.Save(r.Context(), rec); err != nil {
		s.logger.Warn("history write failed", "id", rec.ID, "error", err)
		return ""
	}
	return rec.ID
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	var req LintRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	ds, err := pkgio.DescriptorsDocument{Modules: req.Modules}.Descriptors()
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	findings := lint.Check(ds)
	if findings == nil {
		findings = []lint.Finding{}
	}
	writeJSON(w, http.StatusOK, LintResponse{OK: !lint.HasErrors(findings), Findings: findings})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := history.ValidateID(id); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	rec, err := s.history.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "limit must be a non-negative integer, got %q", raw), "")
			return
		}
		limit = n
	}
	recs, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if recs == nil {
		recs = []*history.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func inputHash(ds []module.Descriptor) string {
	canonical, err := pkgio.MarshalCanonical(ds)
	if err != nil {
		return ""
	}
	return cache.Hash(canonical)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "request body exceeds %d bytes", MaxBodyBytes)
		}
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidManifest,
		errs.ErrCodeInvalidModuleID, errs.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeDuplicateModule, errs.ErrCodeConflictingDirection, errs.ErrCodeMissingRequired,
		errs.ErrCodeNoRootModule, errs.ErrCodeUnsatisfied:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, id string) {
	status := StatusFor(err)
	code := errs.GetCode(err)
	msg := errs.UserMessage(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{
		Code:      string(code),
		Message:   msg,
		ID:        id,
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
