package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sultanops/coinwallet/internal/services/wallet"
)

// NewRouter constructs the read-only ops router. Money never moves
// through this surface; mutations happen in the bot transport only.
func NewRouter(svc *wallet.Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/accounts/{accountId}/balance", h.GetBalanceHandler)
	r.Get("/accounts/{accountId}/history", h.GetHistoryHandler)
	r.Get("/accounts/{accountId}/tier", h.GetTierHandler)
	r.Get("/accounts/{accountId}/reconciliation", h.GetReconciliationHandler)
	r.Get("/withdrawals/pending", h.ListPendingWithdrawalsHandler)
	r.Get("/stats", h.GetStatsHandler)

	return r
}
