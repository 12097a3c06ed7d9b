// internal/api/handler/api/transactions.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jtrask/folio/internal/api/response"
	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/ledger"
	"github.com/jtrask/folio/internal/pricedata"
)

// GenerateRequest is the request body for rule-generated transactions.
type GenerateRequest struct {
	Symbol    string  `json:"stock"`
	Rule      string  `json:"rule"` // dca | fixed
	Amount    float64 `json:"amount,omitempty"`
	Quantity  float64 `json:"quantity,omitempty"`
	Frequency string  `json:"frequency"` // monthly | weekly
	Start     string  `json:"start"`
	End       string  `json:"end"`
}

// TransactionsHandler handles ledger read/append requests.
type TransactionsHandler struct {
	ledger *ledger.Store
	prices pricedata.Repository
	logger *zap.Logger
}

// NewTransactionsHandler creates a transactions handler.
func NewTransactionsHandler(store *ledger.Store, prices pricedata.Repository, logger *zap.Logger) *TransactionsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionsHandler{ledger: store, prices: prices, logger: logger}
}

// List returns the full transaction ledger.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.Load(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}

// Append validates and appends one transaction to the ledger.
func (h *TransactionsHandler) Append(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	if !tx.IsValid() {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, nil))
		return
	}
	if core.ParseAction(tx.Action) == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrInvalidAction, nil))
		return
	}
	if _, err := tx.RequestedDate(); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	if err := h.ledger.Append(r.Context(), tx); err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	h.logger.Info("transaction appended",
		zap.String("symbol", tx.Symbol),
		zap.String("date", tx.Date),
		zap.String("action", tx.Action))
	response.JSON(w, http.StatusCreated, tx)
}

// Generate produces rule-based buy transactions over a schedule and
// appends them to the ledger.
func (h *TransactionsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	if req.Symbol == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, nil))
		return
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	series, err := h.prices.Series(r.Context(), req.Symbol)
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	sched := ledger.Schedule{
		Frequency: ledger.Frequency(req.Frequency),
		Start:     start,
		End:       end,
	}

	var txs []core.Transaction
	switch req.Rule {
	case "dca":
		txs, err = ledger.DollarCostAverage(series, req.Amount, sched)
	case "fixed":
		txs, err = ledger.FixedQuantity(series, req.Quantity, sched)
	default:
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, nil))
		return
	}
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	if err := h.ledger.AppendAll(r.Context(), txs); err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	h.logger.Info("generated transactions appended",
		zap.String("symbol", req.Symbol),
		zap.String("rule", req.Rule),
		zap.Int("count", len(txs)))
	response.JSON(w, http.StatusCreated, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}
