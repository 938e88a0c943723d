// Package handler wires delegate management endpoints to the authz service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coffer/internal/authz/models"
	"coffer/internal/platform/middleware"
	"coffer/internal/transport/http/shared"
	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
	"coffer/pkg/platform/httputil"
)

// Service defines the interface for delegate management.
type Service interface {
	Grant(ctx context.Context, caller, account, delegate id.AccountID, scope models.Scope) (*models.DelegateGrant, error)
	Revoke(ctx context.Context, caller, account, delegate id.AccountID) error
	List(ctx context.Context, caller, account id.AccountID) ([]*models.DelegateGrant, error)
}

// GrantRequest is the payload for granting a delegate.
type GrantRequest struct {
	Scope models.Scope `json:"scope"`
}

func (r *GrantRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if !r.Scope.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "scope must be 'manage' or 'spend'")
	}
	return nil
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts delegate endpoints on the authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Put("/accounts/{account}/delegates/{delegate}", h.handleGrant)
	r.Delete("/accounts/{account}/delegates/{delegate}", h.handleRevoke)
	r.Get("/accounts/{account}/delegates", h.handleList)
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller, account, delegate, ok := h.parties(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[GrantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	grant, err := h.service.Grant(ctx, caller, account, delegate, req.Scope)
	if err != nil {
		h.logger.InfoContext(ctx, "delegate grant rejected",
			"request_id", requestID,
			"account", account,
			"delegate", delegate,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, grant)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, account, delegate, ok := h.parties(w, r)
	if !ok {
		return
	}
	if err := h.service.Revoke(ctx, caller, account, delegate); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

	grants, err := h.service.List(r.Context(), caller, account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, grants)
}

func (h *Handler) parties(w http.ResponseWriter, r *http.Request) (caller, account, delegate id.AccountID, ok bool) {
	caller, err := shared.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", "", false
	}
	account, err = shared.AccountParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", "", false
	}
	delegate, err = shared.DelegateParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", "", false
	}
	return caller, account, delegate, true
}
