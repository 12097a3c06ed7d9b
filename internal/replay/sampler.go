package replay

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/pricedata"
)

// Sampler walks the calendar day by day across the full date span and emits
// one (invested, total value) pair per day, suitable for charting an
// invested-capital step function against the portfolio's valuation curve.
type Sampler struct {
	repo     pricedata.Repository
	resolver *pricedata.Resolver
	logger   *zap.Logger
}

// NewSampler creates a Sampler over the given price repository
func NewSampler(repo pricedata.Repository, resolver *pricedata.Resolver, logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{repo: repo, resolver: resolver, logger: logger}
}

// event is a transaction pinned to its resolved trading session
type event struct {
	index    int
	tx       core.Transaction
	resolved time.Time
	point    core.PricePoint
	series   *pricedata.Series
}

// Run produces one DailySample per calendar day from the earliest resolved
// transaction date through the latest session in any referenced series.
// State is re-derived with the same rules as Replayer.Run; transactions that
// cannot resolve (or carry an invalid action) are skipped into Diagnostics.
// Input order does not matter: events are sorted by resolved date.
func (s *Sampler) Run(ctx context.Context, txs []core.Transaction) ([]core.DailySample, []core.Diagnostic, error) {
	events, diags := s.resolve(ctx, txs)
	if len(events) == 0 {
		return nil, diags, nil
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].resolved.Before(events[j].resolved)
	})

	start := events[0].resolved
	end := start
	seen := make(map[string]struct{})
	series := make(map[string]*pricedata.Series)
	for _, ev := range events {
		key := strings.ToLower(ev.tx.Symbol)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		series[key] = ev.series
		if last := ev.series.Last().Date; last.After(end) {
			end = last
		}
	}

	state := NewState()
	samples := make([]core.DailySample, 0, int(end.Sub(start).Hours()/24)+1)
	cursor := 0

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		select {
		case <-ctx.Done():
			return samples, diags, ctx.Err()
		default:
		}

		// Apply every transaction resolved to this day, in ledger order
		for cursor < len(events) && events[cursor].resolved.Equal(day) {
			ev := events[cursor]
			cursor++

			switch core.ParseAction(ev.tx.Action) {
			case core.ActionBuy:
				state.Buy(ev.tx.Symbol, ev.tx.Quantity, ev.point.Open, ev.point.Factor)
			case core.ActionSell:
				if !state.Sell(ev.tx.Symbol, ev.tx.Quantity, ev.point.Open, ev.point.Factor) {
					diags = append(diags, core.Diagnostic{
						Index:  ev.index,
						Symbol: strings.ToUpper(ev.tx.Symbol),
						Date:   ev.tx.Date,
						Err:    core.ErrInsufficientHoldings,
					})
				}
			}
		}

		// Value the book with the latest session on or before this day,
		// converting adjusted units at that session's factor
		var value float64
		for key, ser := range series {
			adj := state.AdjustedQty(key)
			if adj == 0 {
				continue
			}
			p, ok := ser.LatestOnOrBefore(day)
			if !ok {
				continue
			}
			value += (adj / p.Factor) * p.Open
		}

		samples = append(samples, core.DailySample{
			Date:          day,
			TotalInvested: state.TotalInvested,
			TotalValue:    value + state.Cash,
		})
	}

	return samples, diags, nil
}

// resolve pins each transaction to its trading session, collecting
// diagnostics for the unresolvable ones
func (s *Sampler) resolve(ctx context.Context, txs []core.Transaction) ([]event, []core.Diagnostic) {
	var events []event
	var diags []core.Diagnostic

	fail := func(i int, tx core.Transaction, err *core.Error) {
		diags = append(diags, core.Diagnostic{
			Index:  i,
			Symbol: strings.ToUpper(tx.Symbol),
			Date:   tx.Date,
			Err:    err,
		})
	}

	for i, tx := range txs {
		if core.ParseAction(tx.Action) == "" {
			fail(i, tx, core.ErrInvalidAction)
			continue
		}
		requested, err := tx.RequestedDate()
		if err != nil {
			fail(i, tx, core.WrapError(core.ErrMissingPriceData, err))
			continue
		}
		series, err := s.repo.Series(ctx, tx.Symbol)
		if err != nil {
			fail(i, tx, core.WrapError(core.ErrMissingPriceData, err))
			continue
		}
		point, err := s.resolver.Resolve(series, requested)
		if err != nil {
			fail(i, tx, core.WrapError(core.ErrMissingPriceData, err))
			continue
		}
		events = append(events, event{
			index:    i,
			tx:       tx,
			resolved: point.Date,
			point:    point,
			series:   series,
		})
	}

	return events, diags
}
