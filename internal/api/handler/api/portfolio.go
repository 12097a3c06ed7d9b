// internal/api/handler/api/portfolio.go
package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jtrask/folio/internal/api/response"
	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/ledger"
	"github.com/jtrask/folio/internal/metrics"
	"github.com/jtrask/folio/internal/pricedata"
	"github.com/jtrask/folio/internal/replay"
)

// PortfolioHandler replays the stored ledger on demand.
type PortfolioHandler struct {
	ledger   *ledger.Store
	prices   pricedata.Repository
	resolver *pricedata.Resolver
	metrics  *metrics.Registry
	logger   *zap.Logger
}

// NewPortfolioHandler creates a portfolio handler.
func NewPortfolioHandler(
	store *ledger.Store,
	prices pricedata.Repository,
	resolver *pricedata.Resolver,
	reg *metrics.Registry,
	logger *zap.Logger,
) *PortfolioHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioHandler{
		ledger:   store,
		prices:   prices,
		resolver: resolver,
		metrics:  reg,
		logger:   logger,
	}
}

// session returns a per-request caching view over the price repository.
func (h *PortfolioHandler) session() *pricedata.Cache {
	return pricedata.NewCache(h.prices)
}

// Replay replays the full ledger and returns the transaction log,
// diagnostics, and the final summary.
func (h *PortfolioHandler) Replay(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.Load(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	repo := h.session()
	start := time.Now()
	result, err := replay.New(repo, h.resolver, h.logger).Run(r.Context(), txs)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	summary, err := replay.Summarize(r.Context(), result.State, repo)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	h.record(time.Since(start), len(result.Log), result.Diagnostics, repo)
	response.JSON(w, http.StatusOK, map[string]any{
		"log":         result.Log,
		"diagnostics": result.Diagnostics,
		"summary":     summary,
	})
}

// Daily returns the daily valuation series for the stored ledger.
func (h *PortfolioHandler) Daily(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.Load(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	repo := h.session()
	start := time.Now()
	samples, diags, err := replay.NewSampler(repo, h.resolver, h.logger).Run(r.Context(), txs)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	h.record(time.Since(start), len(txs)-len(diags), diags, repo)
	response.JSON(w, http.StatusOK, map[string]any{
		"samples":     samples,
		"diagnostics": diags,
	})
}

// Summary returns only the final portfolio summary.
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.Load(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	repo := h.session()
	result, err := replay.New(repo, h.resolver, h.logger).Run(r.Context(), txs)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	summary, err := replay.Summarize(r.Context(), result.State, repo)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// record pushes replay outcome metrics when a registry is wired.
func (h *PortfolioHandler) record(elapsed time.Duration, applied int, diags []core.Diagnostic, repo *pricedata.Cache) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordReplay(elapsed.Seconds(), applied)
	for _, d := range diags {
		if d.Err != nil {
			h.metrics.RecordSkipped(d.Err.Code)
		}
	}
	// Each series the session cached cost exactly one storage fetch
	for i := 0; i < repo.Cached(); i++ {
		h.metrics.RecordPriceLoad("ok")
	}
	h.metrics.SetCachedSeries(repo.Cached())
}
