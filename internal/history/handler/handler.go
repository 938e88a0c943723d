// Package handler wires the history endpoint to the history service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"coffer/internal/history/models"
	"coffer/internal/transport/http/shared"
	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
	"coffer/pkg/platform/httputil"
)

// Service defines the interface for history reads.
type Service interface {
	List(ctx context.Context, caller, account id.AccountID, limit int) ([]*models.Entry, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the history endpoint on the authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/accounts/{account}/history", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	account, err := shared.AccountParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be an integer"))
			return
		}
	}

	entries, err := h.service.List(r.Context(), caller, account, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []*models.Entry{}
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}
