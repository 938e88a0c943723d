// Package shared holds helpers common to all coffer HTTP handlers.
package shared

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"coffer/internal/platform/middleware"
	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
)

// Caller returns the authenticated caller account from the request context.
// RequireAuth guarantees it is present on registered routes.
func Caller(r *http.Request) (id.AccountID, error) {
	caller, err := id.ParseAccountID(middleware.GetCallerID(r.Context()))
	if err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return caller, nil
}

// AccountParam parses the {account} path parameter.
func AccountParam(r *http.Request) (id.AccountID, error) {
	return id.ParseAccountID(chi.URLParam(r, "account"))
}

// VaultParam parses the {vaultID} path parameter.
func VaultParam(r *http.Request) (id.VaultID, error) {
	return id.ParseVaultID(chi.URLParam(r, "vaultID"))
}

// DelegateParam parses the {delegate} path parameter.
func DelegateParam(r *http.Request) (id.AccountID, error) {
	return id.ParseAccountID(chi.URLParam(r, "delegate"))
}
