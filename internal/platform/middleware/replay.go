package middleware

import (
	"log/slog"
	"net/http"

	"coffer/internal/replay"
)

// TransactionIDHeader carries the host transaction id for replay protection.
const TransactionIDHeader = "X-Transaction-ID"

// ReplayGuard rejects re-submitted host transactions on mutating routes.
// Requests without the header pass through: the host's own ordering applies
// and the guard only strengthens idempotency for callers that opt in.
func ReplayGuard(guard replay.Guard, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			txID := r.Header.Get(TransactionIDHeader)
			if txID == "" || guard == nil {
				next.ServeHTTP(w, r)
				return
			}

			first, err := guard.FirstSeen(r.Context(), txID)
			if err != nil {
				logger.ErrorContext(r.Context(), "replay guard unavailable",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":"internal","error_description":"replay guard unavailable"}`))
				return
			}
			if !first {
				logger.WarnContext(r.Context(), "duplicate transaction rejected",
					"tx_id", txID,
					"request_id", GetRequestID(r.Context()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"conflict","error_description":"transaction already applied"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
