package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bet-ops-dashboard-go/internal/arb"
	"bet-ops-dashboard-go/internal/models"
	"bet-ops-dashboard-go/internal/reconcile"
	"bet-ops-dashboard-go/internal/store"
	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log       *zap.Logger
	store     store.Store
	engine    *reconcile.Engine
	closure   *reconcile.ClosureService
	autosaver *reconcile.Autosaver
	userID    string
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, st store.Store, engine *reconcile.Engine, closure *reconcile.ClosureService, autosaver *reconcile.Autosaver, userID string) *APIHandler {
	return &APIHandler{log: log, store: st, engine: engine, closure: closure, autosaver: autosaver, userID: userID}
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to write response", zap.Error(err))
	}
}

// persistError distinguishes a retryable persistence failure from a partial
// write that needs manual reconciliation.
func (h *APIHandler) persistError(w http.ResponseWriter, err error) {
	h.log.Error("Persistence failure", zap.Error(err))
	if errors.Is(err, reconcile.ErrPartialWrite) {
		http.Error(w, "Operation partially applied; manual reconciliation required", http.StatusConflict)
		return
	}
	http.Error(w, "Operation failed; please retry", http.StatusInternalServerError)
}

// DutchingHandler computes an N-way stake allocation.
func (h *APIHandler) DutchingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Odds  []float64 `json:"odds"`
		Total float64   `json:"total"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, arb.AllocateDutching(req.Odds, req.Total))
}

// SurebetHandler computes the 2-way ideal allocation for two legs.
func (h *APIHandler) SurebetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Legs [2]arb.SurebetLeg `json:"legs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, arb.AllocateSurebet(req.Legs[0], req.Legs[1]))
}

// DailyReportHandler recomputes and returns the full dashboard state.
func (h *APIHandler) DailyReportHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.Refresh(r.Context(), h.userID)
	if err != nil {
		h.persistError(w, err)
		return
	}
	h.writeJSON(w, res)
}

// GoalHandler reads goal progress or updates the monthly goal.
func (h *APIHandler) GoalHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		res, err := h.engine.Refresh(r.Context(), h.userID)
		if err != nil {
			h.persistError(w, err)
			return
		}
		h.writeJSON(w, res.Progress)
	case http.MethodPut:
		var req struct {
			Value float64 `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := h.store.UpdateMonthlyGoal(r.Context(), h.userID, req.Value); err != nil {
			h.persistError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// CloseOperationHandler commits an arbitrage operation's result.
func (h *APIHandler) CloseOperationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Profit   float64                 `json:"profit"`
		Metadata reconcile.CloseMetadata `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.closure.CloseOperation(r.Context(), h.userID, req.Profit, req.Metadata)
	if err != nil {
		h.persistError(w, err)
		return
	}
	h.writeJSON(w, res)
}

// CloseDayHandler closes a calendar day or reopens it.
func (h *APIHandler) CloseDayHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Date string `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		summary, err := h.closure.CloseDay(r.Context(), h.userID, req.Date)
		if err != nil {
			h.persistError(w, err)
			return
		}
		h.writeJSON(w, summary)
	case http.MethodDelete:
		date := r.URL.Query().Get("date")
		if date == "" {
			http.Error(w, "Missing date", http.StatusBadRequest)
			return
		}
		if err := h.closure.ReopenDay(r.Context(), h.userID, date); err != nil {
			h.persistError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// DraftHandler autosaves, reads or discards the in-progress operation draft.
func (h *APIHandler) DraftHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		var draft reconcile.Draft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		// coalesced write; the flush happens after the user stops typing
		h.autosaver.Edit(draft)
		w.WriteHeader(http.StatusAccepted)
	case http.MethodGet:
		draft, err := h.store.GetDraft(r.Context(), h.userID)
		if err != nil {
			h.persistError(w, err)
			return
		}
		if draft == nil {
			http.Error(w, "No draft", http.StatusNotFound)
			return
		}
		h.writeJSON(w, draft)
	case http.MethodDelete:
		if err := h.store.DeleteDraft(r.Context(), h.userID); err != nil {
			h.persistError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HistoryHandler lists committed operations or reverses one.
func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := h.store.ListHistory(r.Context(), h.userID)
		if err != nil {
			h.persistError(w, err)
			return
		}
		h.writeJSON(w, entries)
	case http.MethodDelete:
		entryID := r.URL.Query().Get("id")
		if entryID == "" {
			http.Error(w, "Missing id", http.StatusBadRequest)
			return
		}
		if err := h.closure.DeleteHistoryEntry(r.Context(), h.userID, entryID); err != nil {
			h.persistError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// TransactionsHandler lists, creates or deletes ledger entries.
func (h *APIHandler) TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var dr *store.DateRange
		if from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to"); from != "" || to != "" {
			dr = &store.DateRange{From: from, To: to}
		}
		txs, err := h.store.ListTransactions(r.Context(), h.userID, dr)
		if err != nil {
			h.persistError(w, err)
			return
		}
		h.writeJSON(w, txs)
	case http.MethodPost:
		var tx models.Transaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		tx.UserID = h.userID
		if tx.Kind == "" {
			tx.Kind = models.KindPlain
		}
		if tx.Kind == models.KindPlain && tx.Amount <= 0 {
			http.Error(w, "Amount must be positive", http.StatusBadRequest)
			return
		}
		if _, ok := reconcile.ParseDay(tx.Date); !ok {
			http.Error(w, "Invalid date", http.StatusBadRequest)
			return
		}
		if err := h.store.CreateTransaction(r.Context(), &tx); err != nil {
			h.persistError(w, err)
			return
		}
		h.writeJSON(w, tx)
	case http.MethodDelete:
		id, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			http.Error(w, "Missing or invalid id", http.StatusBadRequest)
			return
		}
		if err := h.store.DeleteTransaction(r.Context(), h.userID, uint(id)); err != nil {
			h.persistError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HealthHandler reports liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK\n"))
}
