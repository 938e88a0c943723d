// Package handler wires vault endpoints to the vault service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coffer/internal/platform/middleware"
	"coffer/internal/transport/http/shared"
	"coffer/internal/vault/models"
	id "coffer/pkg/domain"
	"coffer/pkg/platform/httputil"
)

// Service defines the interface for vault operations.
type Service interface {
	Open(ctx context.Context, caller, account id.AccountID, req *models.OpenVaultRequest) (*models.Vault, error)
	Deposit(ctx context.Context, caller, account id.AccountID, vaultID id.VaultID, amount int64) (*models.Vault, error)
	Withdraw(ctx context.Context, caller, account id.AccountID, vaultID id.VaultID, amount int64) (*models.Vault, error)
	Get(ctx context.Context, caller, account id.AccountID, vaultID id.VaultID) (*models.Vault, error)
	List(ctx context.Context, caller, account id.AccountID) ([]*models.Vault, error)
	BatchOpen(ctx context.Context, req *models.BatchOpenRequest) (*models.BatchOpenResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts vault endpoints on the authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/accounts/{account}/vaults", h.handleOpen)
	r.Get("/accounts/{account}/vaults", h.handleList)
	r.Get("/accounts/{account}/vaults/{vaultID}", h.handleGet)
	r.Post("/accounts/{account}/vaults/{vaultID}/deposit", h.handleDeposit)
	r.Post("/accounts/{account}/vaults/{vaultID}/withdraw", h.handleWithdraw)
}

// RegisterAdmin mounts batch endpoints on the admin router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/vaults/batch", h.handleBatchOpen)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller, account, ok := h.parties(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.OpenVaultRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	vault, err := h.service.Open(ctx, caller, account, req)
	if err != nil {
		h.logger.InfoContext(ctx, "vault open rejected",
			"request_id", requestID,
			"account", account,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, vault)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, account, ok := h.parties(w, r)
	if !ok {
		return
	}
	vaults, err := h.service.List(r.Context(), caller, account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, vaults)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caller, account, vaultID, ok := h.vaultParties(w, r)
	if !ok {
		return
	}
	vault, err := h.service.Get(r.Context(), caller, account, vaultID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, vault)
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	h.handleMove(w, r, h.service.Deposit, "deposit")
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.handleMove(w, r, h.service.Withdraw, "withdrawal")
}

type moveFunc func(ctx context.Context, caller, account id.AccountID, vaultID id.VaultID, amount int64) (*models.Vault, error)

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request, move moveFunc, verb string) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller, account, vaultID, ok := h.vaultParties(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.MoveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	vault, err := move(ctx, caller, account, vaultID, req.Amount)
	if err != nil {
		h.logger.InfoContext(ctx, "vault "+verb+" rejected",
			"request_id", requestID,
			"account", account,
			"vault_id", vaultID,
			"amount", req.Amount,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, vault)
}

func (h *Handler) handleBatchOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.BatchOpenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.service.BatchOpen(ctx, req)
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

func (h *Handler) vaultParties(w http.ResponseWriter, r *http.Request) (caller, account id.AccountID, vaultID id.VaultID, ok bool) {
	caller, account, ok = h.parties(w, r)
	if !ok {
		return "", "", 0, false
	}
	vaultID, err := shared.VaultParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", 0, false
	}
	return caller, account, vaultID, true
}
