// Package handler wires budget endpoints to the budget service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coffer/internal/budget/models"
	"coffer/internal/platform/middleware"
	"coffer/internal/transport/http/shared"
	id "coffer/pkg/domain"
	"coffer/pkg/platform/httputil"
)

// Service defines the interface for budget operations.
type Service interface {
	Set(ctx context.Context, caller, account id.AccountID, req *models.SetBudgetRequest) (*models.Config, error)
	Clear(ctx context.Context, caller, account id.AccountID) error
	RecordSpend(ctx context.Context, caller, account id.AccountID, amount int64) (*models.SpendReceipt, error)
	Remaining(ctx context.Context, caller, account id.AccountID) (*models.Remaining, error)
	BatchAllocate(ctx context.Context, req *models.BatchAllocateRequest) (*models.BatchAllocateResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts budget endpoints on the authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Put("/accounts/{account}/budget", h.handleSet)
	r.Get("/accounts/{account}/budget", h.handleRemaining)
	r.Delete("/accounts/{account}/budget", h.handleClear)
	r.Post("/accounts/{account}/spend", h.handleSpend)
}

// RegisterAdmin mounts batch endpoints on the admin router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/budgets/batch", h.handleBatchAllocate)
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller, account, ok := h.parties(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.SetBudgetRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	config, err := h.service.Set(ctx, caller, account, req)
	if err != nil {
		h.logger.InfoContext(ctx, "budget set rejected",
			"request_id", requestID,
			"account", account,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, config)
}

func (h *Handler) handleRemaining(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, account, ok := h.parties(w, r)
	if !ok {
		return
	}
	remaining, err := h.service.Remaining(ctx, caller, account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, remaining)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, account, ok := h.parties(w, r)
	if !ok {
		return
	}
	if err := h.service.Clear(ctx, caller, account); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSpend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller, account, ok := h.parties(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.SpendRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	receipt, err := h.service.RecordSpend(ctx, caller, account, req.Amount)
	if err != nil {
		h.logger.InfoContext(ctx, "spend rejected",
			"request_id", requestID,
			"account", account,
			"amount", req.Amount,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, receipt)
}

func (h *Handler) handleBatchAllocate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.BatchAllocateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.service.BatchAllocate(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) parties(w http.ResponseWriter, r *http.Request) (caller, account id.AccountID, ok bool) {
	caller, err := shared.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", false
	}
	account, err = shared.AccountParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", false
	}
	return caller, account, true
}
