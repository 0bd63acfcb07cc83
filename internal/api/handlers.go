package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/coursedocs/internal/apperr"
	"github.com/starford/coursedocs/internal/docservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *docservice.Service
	runner Runner
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service, runner Runner) *Handler {
	return &Handler{svc: svc, runner: runner}
}

// documentPath extracts the document path from the URL (everything after /api/documents/).
// Supports encoded slashes from OpenAPI clients.
func documentPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List generated documents
//	@Tags			documents
//	@Produce		json
//	@Param			category	query		string	false	"Filter by category"	Enums(HealthcareApplicable, GeneralTechnical, DomainNeutral)
//	@Success		200			{object}	DocumentListResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.ListDocuments(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCategory) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid category"))
			return
		}
		slog.Error("api: list documents failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: len(docs)})
}

// GetDocument handles GET /api/documents/*.
//
//	@Summary		Get a generated document by path
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	DocumentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), path)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrPathEscapes):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		default:
			slog.Error("api: get document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("ETag", `"`+doc.Checksum+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(doc.Content))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across generated documents
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("api: search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// LatestRun handles GET /api/runs/latest.
//
//	@Summary		Summary of the most recent pipeline run
//	@Tags			runs
//	@Produce		json
//	@Success		200	{object}	RunSummary
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/runs/latest [get]
func (h *Handler) LatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.LatestRun(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("no runs recorded"))
			return
		}
		slog.Error("api: latest run failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// TriggerRun handles POST /api/runs.
//
//	@Summary		Run the pipeline now and return its report
//	@Tags			runs
//	@Produce		json
//	@Success		200	{object}	pipeline.Report
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/runs [post]
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.Run(r.Context())
	if err != nil {
		slog.Error("api: run failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("run failed"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
