// Package handler wires the composite policy endpoint to the registry.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coffer/internal/registry"
	"coffer/internal/transport/http/shared"
	id "coffer/pkg/domain"
	"coffer/pkg/platform/httputil"
)

// Service defines the interface for policy resolution.
type Service interface {
	Resolve(ctx context.Context, caller, account id.AccountID) (*registry.Policy, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the policy endpoint on the authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/accounts/{account}/policy", h.handleResolve)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
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

	policy, err := h.service.Resolve(r.Context(), caller, account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, policy)
}
