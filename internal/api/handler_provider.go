package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sultanops/coinwallet/internal/repos/accounts"
	"github.com/sultanops/coinwallet/internal/services/wallet"
)

// HandlerProvider wraps the wallet service and exposes HTTP handlers.
type HandlerProvider struct {
	svc *wallet.Service
}

// NewHandler returns a new handler provider.
func NewHandler(svc *wallet.Service) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)

		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseAccountIDFromPath reads `{accountId}` from chi routes like:
//
//	GET /accounts/{accountId}/balance
func parseAccountIDFromPath(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "accountId")
	if idStr == "" {
		return 0, fmt.Errorf("missing accountId")
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid accountId: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid accountId: must be positive")
	}

	return id, nil
}

func writeDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, accounts.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// --- Handlers ---

// GetBalanceHandler handles GET /accounts/{accountId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	bal, err := h.svc.Balance(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := map[string]any{
		"accountId": accountID,
		"balance":   bal,
	}
	writeJSON(w, http.StatusOK, resp)
}

type historyEntry struct {
	ID        int64     `json:"id"`
	Amount    int64     `json:"amount"`
	Cause     string    `json:"cause"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetHistoryHandler handles GET /accounts/{accountId}/history?limit=N
func (h *HandlerProvider) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	entries, err := h.svc.History(r.Context(), accountID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{
			ID:        e.ID,
			Amount:    e.Amount,
			Cause:     string(e.Cause),
			Note:      e.Note,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"entries":   out,
	})
}

// GetTierHandler handles GET /accounts/{accountId}/tier
func (h *HandlerProvider) GetTierHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	tier, err := h.svc.Tier(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := map[string]any{
		"accountId":       accountID,
		"level":           tier.Level,
		"name":            tier.Name,
		"transferLimit":   tier.TransferLimit,
		"clickReward":     tier.ClickReward,
		"bonusMultiplier": tier.BonusMultiplier,
		"discountPct":     tier.DiscountPct,
	}
	if tier.Expiry != nil {
		resp["expiry"] = tier.Expiry
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetReconciliationHandler handles GET /accounts/{accountId}/reconciliation
// and reports whether the stored balance matches the ledger sum.
func (h *HandlerProvider) GetReconciliationHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	balance, ledgerSum, err := h.svc.Reconcile(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"balance":    balance,
		"ledgerSum":  ledgerSum,
		"consistent": balance == ledgerSum,
	})
}

type pendingWithdrawal struct {
	ID        string    `json:"id"`
	AccountID int64     `json:"accountId"`
	Amount    int64     `json:"amount"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListPendingWithdrawalsHandler handles GET /withdrawals/pending
func (h *HandlerProvider) ListPendingWithdrawalsHandler(w http.ResponseWriter, r *http.Request) {
	pending, err := h.svc.PendingWithdrawals(r.Context(), 100)
	if err != nil {
		slog.Error("listing pending withdrawals failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]pendingWithdrawal, 0, len(pending))
	for _, wd := range pending {
		out = append(out, pendingWithdrawal{
			ID:        wd.ID.String(),
			AccountID: wd.AccountID,
			Amount:    wd.Amount,
			Details:   wd.PayoutDetails,
			CreatedAt: wd.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"withdrawals": out})
}

// GetStatsHandler handles GET /stats
func (h *HandlerProvider) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		slog.Error("collecting stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totalAccounts": stats.Total,
		"newToday":      stats.Day,
		"newThisWeek":   stats.Week,
		"newThisMonth":  stats.Month,
	})
}
