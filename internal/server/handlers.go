package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/clusterflow/pkg/buildinfo"
	"github.com/matzehuels/clusterflow/pkg/diagram"
	"github.com/matzehuels/clusterflow/pkg/errors"
	"github.com/matzehuels/clusterflow/pkg/pipeline"
)

// LayoutRequest is the body of /v1/layout and /v1/render.
type LayoutRequest struct {
	Diagram *diagram.Diagram `json:"diagram"`
	Options pipeline.Options `json:"options"`
}

// LayoutResponse is the body returned by /v1/layout.
type LayoutResponse struct {
	Hash   string          `json:"hash"`
	Cached bool            `json:"cached"`
	Layout *diagram.Layout `json:"layout"`
	SVG    string          `json:"svg,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	if !slices.Contains(req.Options.Formats, pipeline.FormatJSON) {
		req.Options.Formats = append(req.Options.Formats, pipeline.FormatJSON)
	}

	res, err := s.runner.Execute(r.Context(), req.Diagram, req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		Hash:   res.DiagramHash,
		Cached: res.CacheInfo.LayoutHit,
		Layout: res.Layout,
		SVG:    string(res.Artifacts[pipeline.FormatSVG]),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	req.Options.Formats = []string{pipeline.FormatSVG}

	res, err := s.runner.Execute(r.Context(), req.Diagram, req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[pipeline.FormatSVG])
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*LayoutRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	var req LayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return nil, false
	}
	if req.Diagram == nil {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "diagram is required"))
		return nil, false
	}
	req.Options.Logger = s.logger.With("request", middleware.GetReqID(r.Context()))
	return &req, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidID, errors.ErrCodeInvalidDirection:
		return http.StatusBadRequest
	case errors.ErrCodeParentCycle, errors.ErrCodeLimitExceeded, errors.ErrCodeAmbiguousAnchor:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
