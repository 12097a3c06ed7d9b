package replay

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/pricedata"
)

// Result holds the complete output of one replay pass
type Result struct {
	Log         []core.LogEntry   `json:"log"`
	Diagnostics []core.Diagnostic `json:"diagnostics"`
	State       *PortfolioState   `json:"-"`
}

// Replayer applies an ordered transaction ledger against price histories,
// producing per-transaction state snapshots and error annotations.
type Replayer struct {
	repo     pricedata.Repository
	resolver *pricedata.Resolver
	logger   *zap.Logger
}

// New creates a Replayer over the given price repository
func New(repo pricedata.Repository, resolver *pricedata.Resolver, logger *zap.Logger) *Replayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replayer{repo: repo, resolver: resolver, logger: logger}
}

// Run replays the ledger in the order supplied. Every failure is locally
// recovered: the offending transaction lands in Diagnostics with state
// unchanged, and replay continues. Only ctx cancellation ends the run early;
// the partial result is still consistent.
func (r *Replayer) Run(ctx context.Context, txs []core.Transaction) (*Result, error) {
	res := &Result{State: NewState()}

	for i, tx := range txs {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		if err := r.apply(ctx, res, tx); err != nil {
			res.Diagnostics = append(res.Diagnostics, core.Diagnostic{
				Index:  i,
				Symbol: strings.ToUpper(tx.Symbol),
				Date:   tx.Date,
				Err:    err,
			})
			r.logger.Debug("transaction skipped",
				zap.Int("index", i),
				zap.String("symbol", tx.Symbol),
				zap.String("date", tx.Date),
				zap.Error(err),
			)
		}
	}

	return res, nil
}

// apply executes one transaction, appending a log entry on success. The
// returned error is one of the recoverable taxonomy codes.
func (r *Replayer) apply(ctx context.Context, res *Result, tx core.Transaction) *core.Error {
	requested, err := tx.RequestedDate()
	if err != nil {
		return core.WrapError(core.ErrMissingPriceData, err)
	}

	series, err := r.repo.Series(ctx, tx.Symbol)
	if err != nil {
		return core.WrapError(core.ErrMissingPriceData, err)
	}

	point, err := r.resolver.Resolve(series, requested)
	if err != nil {
		return core.WrapError(core.ErrMissingPriceData, err)
	}

	state := res.State
	price := point.Open
	factor := point.Factor

	switch core.ParseAction(tx.Action) {
	case core.ActionBuy:
		state.Buy(tx.Symbol, tx.Quantity, price, factor)
	case core.ActionSell:
		if !state.Sell(tx.Symbol, tx.Quantity, price, factor) {
			return core.ErrInsufficientHoldings
		}
	default:
		return core.ErrInvalidAction
	}

	raw := state.RawHoldings(tx.Symbol, factor)
	res.Log = append(res.Log, core.LogEntry{
		RequestedDate: tx.Date,
		ResolvedDate:  point.Date.Format("2006-01-02"),
		Symbol:        strings.ToUpper(tx.Symbol),
		Action:        core.ParseAction(tx.Action),
		Quantity:      tx.Quantity,
		Price:         price,
		RawHoldings:   raw,
		HoldingValue:  raw * price,
		Cash:          state.Cash,
		TotalInvested: state.TotalInvested,
		AdjustedQty:   state.AdjustedQty(tx.Symbol),
	})
	return nil
}
