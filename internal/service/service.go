// Package service exposes the audit pipeline over HTTP (chi) and MCP.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/veilmark/semdom/audit"
	"github.com/veilmark/semdom/delegate"
	"github.com/veilmark/semdom/internal/store"
)

// maxBodyBytes caps the HTML payload accepted for auditing.
const maxBodyBytes = 4 << 20

// Service wires the auditor, the optional report store, and policy.
type Service struct {
	auditor *audit.Auditor
	policy  delegate.Policy
	store   *store.Store // nil disables persistence
	logger  *slog.Logger
}

// New creates a Service. st may be nil (audits are then not persisted
// and the report endpoints answer 404).
func New(policy delegate.Policy, st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		auditor: audit.New(audit.Options{Policy: policy, Logger: logger}),
		policy:  policy,
		store:   st,
		logger:  logger,
	}
}

// Router builds the HTTP routing table. authHash, when non-empty, is a
// bcrypt hash gating every /v1 route behind Basic Auth.
func (s *Service) Router(authHash string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		if authHash != "" {
			r.Use(basicAuth(authHash, s.logger))
		}
		r.Post("/audit", s.handleAudit)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
	})
	return r
}

// auditRequest is the JSON form of POST /v1/audit. A raw text/html
// body is accepted too.
type auditRequest struct {
	HTML   string           `json:"html"`
	Policy *delegate.Policy `json:"policy,omitempty"`
	// Persist stores the report when a database is configured.
	Persist bool `json:"persist,omitempty"`
}

func (s *Service) handleAudit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAuditRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	auditor := s.auditor
	if req.Policy != nil {
		auditor = audit.New(audit.Options{Policy: *req.Policy, Logger: s.logger})
	}
	rep, err := auditor.Run([]byte(req.HTML))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	if req.Persist && s.store != nil {
		if err := s.store.InsertReport(r.Context(), rep); err != nil {
			s.logger.Error("service: persist report", "id", rep.ID, "error", err)
		}
	}

	s.logger.Info("service: audit",
		"id", rep.ID,
		"shadow_roots", rep.Summary.ShadowRoots,
		"delegates", rep.Summary.Delegates,
		"cycles", rep.Summary.Cycles,
	)
	writeJSON(w, http.StatusOK, rep)
}

func decodeAuditRequest(r *http.Request) (*auditRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty request body")
	}

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var req auditRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		if req.HTML == "" {
			return nil, errors.New("missing html field")
		}
		return &req, nil
	}
	// Raw HTML body: audit with server policy, persist by default.
	return &auditRequest{HTML: string(body), Persist: true}, nil
}

func (s *Service) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("report history disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	metas, err := s.store.ListReports(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": metas})
}

func (s *Service) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("report history disabled"))
		return
	}
	id := chi.URLParam(r, "id")
	rep, err := s.store.GetReport(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, errors.New("report not found"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Audit runs an audit outside HTTP (shared by the MCP tools and CLI).
func (s *Service) Audit(ctx context.Context, html string, policy *delegate.Policy, persist bool) (*audit.Report, error) {
	auditor := s.auditor
	if policy != nil {
		auditor = audit.New(audit.Options{Policy: *policy, Logger: s.logger})
	}
	rep, err := auditor.Run([]byte(html))
	if err != nil {
		return nil, err
	}
	if persist && s.store != nil {
		if err := s.store.InsertReport(ctx, rep); err != nil {
			s.logger.Error("service: persist report", "id", rep.ID, "error", err)
		}
	}
	return rep, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
