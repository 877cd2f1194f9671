package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/resolver"
	"pvt-resolver/internal/service"
)

// Resolver answers one resolution request.
type Resolver interface {
	Resolve(ctx context.Context, req domain.Request) (domain.Result, error)
}

// CompletionLister lists completions that have samples.
type CompletionLister interface {
	ListCompletions(ctx context.Context) ([]string, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	resolver Resolver
	lister   CompletionLister
	logger   *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(r Resolver, l CompletionLister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{resolver: r, lister: l, logger: logger}
}

// ListCompletions handles GET /api/completions.
func (h *Handler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	ids, err := h.lister.ListCompletions(r.Context())
	if err != nil {
		h.logger.Error("list completions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list completions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, CompletionsResponse{Completions: ids})
}

// ResolveProfile handles GET /api/completions/{id}/pvt.
func (h *Handler) ResolveProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	pressure, err := strconv.ParseFloat(q.Get("pressure"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "pressure must be a number", err)
		return
	}
	asOf, err := domain.ParseDate(q.Get("as_of"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD", err)
		return
	}

	req := domain.Request{CompletionID: id, TargetPressure: pressure, AsOf: asOf}
	res, err := h.resolver.Resolve(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toProfileDTO(req, res))
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, resolver.ErrInvalidPressure):
		writeError(w, http.StatusBadRequest, "invalid request", err)
	default:
		h.logger.Error("resolve failed", zap.String("completion_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to resolve profile", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
