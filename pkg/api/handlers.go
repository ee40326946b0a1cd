package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/islandlink/pkg/buildinfo"
	"github.com/matzehuels/islandlink/pkg/errors"
	islandio "github.com/matzehuels/islandlink/pkg/io"
	"github.com/matzehuels/islandlink/pkg/pipeline"
)

// SolveRequest is the body of POST /v1/solve.
type SolveRequest struct {
	Groups  []islandio.GroupInput `json:"groups" validate:"required,min=1,dive"`
	Formats []string              `json:"formats,omitempty" validate:"omitempty,dive,oneof=svg png pdf dot"`
	Labels  *bool                 `json:"labels,omitempty"`
	Refresh bool                  `json:"refresh,omitempty"`
	// Source names the input in the run history.
	Source string `json:"source,omitempty" validate:"max=200"`
}

// SolveResponse is the data of a successful solve.
type SolveResponse struct {
	RunID  string          `json:"run_id,omitempty"`
	Groups []GroupResponse `json:"groups"`
}

// GroupResponse is one solved group.
type GroupResponse struct {
	pipeline.GroupResult
	// Report is the classic one-line summary.
	Report string `json:"report"`
	// Artifacts holds SVG and DOT as text, PNG and PDF base64 encoded.
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Get().Version,
	})
}

func (s *Server) solve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req SolveRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if err := validateStruct(req); err != nil {
		respondError(w, err)
		return
	}

	opts := pipeline.Options{
		MaxSites: s.opts.MaxSites,
		Refresh:  req.Refresh,
		Formats:  req.Formats,
		Labels:   s.opts.Labels,
		Scale:    s.opts.Scale,
		Logger:   s.logger,
	}
	if req.Labels != nil {
		opts.Labels = *req.Labels
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		respondError(w, err)
		return
	}

	groups, err := islandio.ToGroups(req.Groups, islandio.Options{MaxSites: opts.MaxSites})
	if err != nil {
		respondError(w, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), groups, opts)
	if err != nil {
		respondError(w, err)
		return
	}

	out := SolveResponse{Groups: make([]GroupResponse, len(res.Groups))}
	for i, g := range res.Groups {
		out.Groups[i] = GroupResponse{
			GroupResult: g,
			Report:      g.String(),
			Artifacts:   encodeArtifacts(g.Artifacts),
		}
	}

	if s.history != nil {
		source := req.Source
		if source == "" {
			source = "api"
		}
		run, err := s.history.SaveRun(r.Context(), source, res)
		if err != nil {
			s.logger.Warn("failed to record run", "error", err)
		} else {
			out.RunID = run.ID
		}
	}

	respondJSON(w, http.StatusOK, out)
}

func encodeArtifacts(in map[string][]byte) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for format, data := range in {
		switch format {
		case pipeline.FormatSVG, pipeline.FormatDOT:
			out[format] = string(data)
		default:
			out[format] = base64.StdEncoding.EncodeToString(data)
		}
	}
	return out
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, errors.New(errors.ErrCodeUnsupported, "run history is disabled"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer, got %q", v))
			return
		}
		limit = n
	}

	runs, err := s.history.ListRuns(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, errors.New(errors.ErrCodeUnsupported, "run history is disabled"))
		return
	}
	run, err := s.history.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}
