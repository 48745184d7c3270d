package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cbodonnell/fakegame/pkg/entitlements"
	"github.com/cbodonnell/fakegame/pkg/iap"
	"github.com/cbodonnell/fakegame/pkg/log"
	"github.com/cbodonnell/fakegame/pkg/reconciler"
	"github.com/cbodonnell/fakegame/pkg/repositories"
	"github.com/gorilla/mux"
)

const defaultTransactionsLimit = 50

// Reconciler is the subset of *reconciler.Reconciler served over HTTP.
type Reconciler interface {
	GameData(ctx context.Context) (entitlements.GameData, error)
	Products(ctx context.Context) ([]iap.Item, error)
	ItemForSlot(ctx context.Context, index int) (iap.Item, bool, error)
	PriceFormatted(item iap.Item) (string, bool)
	Purchase(ctx context.Context, item iap.Item) (<-chan reconciler.Outcome, error)
	RestorePurchases(ctx context.Context) (<-chan reconciler.Outcome, error)
	Consume(ctx context.Context, resource entitlements.Resource) (entitlements.GameData, error)
	Reset(ctx context.Context) (entitlements.GameData, error)
	Export(ctx context.Context) (map[string]any, bool, error)
}

// Slot is one row of the store list.
type Slot struct {
	Index       int                  `json:"index"`
	Keyword     entitlements.Keyword `json:"keyword"`
	Available   bool                 `json:"available"`
	ProductID   string               `json:"product_id,omitempty"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	Price       string               `json:"price,omitempty"`
	Balance     *int                 `json:"balance,omitempty"`
	Unlocked    *bool                `json:"unlocked,omitempty"`
}

func HandleGetGameData(r Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		data, err := r.GameData(req.Context())
		if err != nil {
			writeError(w, "failed to get game data", err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

func HandleListProducts(r Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		products, err := r.Products(req.Context())
		if err != nil {
			writeError(w, "failed to list products", err)
			return
		}
		writeJSON(w, http.StatusOK, products)
	}
}

func HandleListSlots(r Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		data, err := r.GameData(req.Context())
		if err != nil {
			writeError(w, "failed to get game data", err)
			return
		}

		slots := make([]Slot, 0, len(entitlements.Slots))
		for index, keyword := range entitlements.Slots {
			item, found, err := r.ItemForSlot(req.Context(), index)
			if err != nil {
				writeError(w, "failed to get slot item", err)
				return
			}
			slot := Slot{Index: index, Keyword: keyword, Available: found}
			if found {
				slot.ProductID = item.ID
				slot.Title = item.Title
				slot.Description = item.Description
				slot.Price, _ = r.PriceFormatted(item)
			}
			switch keyword {
			case entitlements.KeywordExtraLives:
				slot.Balance = &data.ExtraLives
			case entitlements.KeywordSuperPowers:
				slot.Balance = &data.SuperPowers
			default:
				slot.Unlocked = &data.AllMapsUnlocked
			}
			slots = append(slots, slot)
		}
		writeJSON(w, http.StatusOK, slots)
	}
}

func HandlePurchaseSlot(r Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		index, err := strconv.Atoi(mux.Vars(req)["index"])
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Failed to parse slot index")
			return
		}
		item, found, err := r.ItemForSlot(req.Context(), index)
		if err != nil {
			writeError(w, "failed to get slot item", err)
			return
		}
		if !found {
			writeMessage(w, http.StatusNotFound, "Product not available")
			return
		}

		outcomes, err := r.Purchase(req.Context(), item)
		if err != nil {
			writeError(w, "failed to purchase", err)
			return
		}
		writeOutcome(w, req, outcomes)
	}
}

func HandleRestore(r Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		outcomes, err := r.RestorePurchases(req.Context())
		if err != nil {
			writeError(w, "failed to restore purchases", err)
			return
		}
		writeOutcome(w, req, outcomes)
	}
}

func HandleConsume(r Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		resource, err := entitlements.ParseResource(mux.Vars(req)["resource"])
		if err != nil {
			writeError(w, "failed to parse resource", err)
			return
		}
		data, err := r.Consume(req.Context(), resource)
		if err != nil {
			writeError(w, "failed to consume", err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

func HandleReset(r Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		data, err := r.Reset(req.Context())
		if err != nil {
			writeError(w, "failed to reset game data", err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

func HandleExport(r Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		m, ok, err := r.Export(req.Context())
		if err != nil {
			writeError(w, "failed to export game data", err)
			return
		}
		if !ok {
			writeMessage(w, http.StatusNotFound, "No game data to export")
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func HandleListTransactions(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if repository == nil {
			writeMessage(w, http.StatusNotFound, "Ledger is disabled")
			return
		}
		limit := defaultTransactionsLimit
		if s := req.URL.Query().Get("limit"); s != "" {
			parsed, err := strconv.Atoi(s)
			if err != nil || parsed < 1 {
				writeMessage(w, http.StatusBadRequest, "Failed to parse limit")
				return
			}
			limit = parsed
		}
		transactions, err := repository.ListTransactions(req.Context(), limit)
		if err != nil {
			log.Error("failed to list transactions: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Failed to list transactions")
			return
		}
		writeJSON(w, http.StatusOK, transactions)
	}
}

// writeOutcome waits for the outcome of a purchase or restore. The request
// keeps running if the client goes away.
func writeOutcome(w http.ResponseWriter, req *http.Request, outcomes <-chan reconciler.Outcome) {
	select {
	case outcome := <-outcomes:
		if outcome.Err != nil {
			writeError(w, "purchase request failed", outcome.Err)
			return
		}
		writeJSON(w, http.StatusOK, outcome)
	case <-req.Context().Done():
		log.Debug("client left before the outcome of %s", req.URL.Path)
	}
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entitlements.ErrUnknownResource):
		return http.StatusBadRequest
	case errors.Is(err, iap.ErrPaymentsDisabled):
		return http.StatusForbidden
	case errors.Is(err, reconciler.ErrRequestInFlight):
		return http.StatusConflict
	case errors.Is(err, entitlements.ErrDepleted):
		return http.StatusUnprocessableEntity
	case iap.IsGatewayFailure(err):
		return http.StatusBadGateway
	case errors.Is(err, reconciler.ErrStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("%s: %v", msg, err)
	} else {
		log.Debug("%s: %v", msg, err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeMessage writes a request error that has no underlying error value.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
