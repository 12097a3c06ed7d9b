package replay

import (
	"context"
	"strings"

	"github.com/jtrask/folio/internal/pricedata"
)

// Position is one symbol's final holding valued at its last session
type Position struct {
	Symbol    string  `json:"symbol"` // upper-cased
	Quantity  float64 `json:"quantity"`
	LastPrice float64 `json:"last_price"`
	Value     float64 `json:"value"`
}

// Summary aggregates the final portfolio state
type Summary struct {
	Positions     []Position `json:"positions"`
	TotalValue    float64    `json:"total_value"`
	Cash          float64    `json:"cash"`
	TotalMoney    float64    `json:"total_money"`
	TotalInvested float64    `json:"total_invested"`
	GainPercent   float64    `json:"gain_percent"`
}

// Summarize values the final state at each symbol's last available session.
// Gain is reported as zero when nothing was ever invested.
func Summarize(ctx context.Context, state *PortfolioState, repo pricedata.Repository) (*Summary, error) {
	sum := &Summary{
		Cash:          state.Cash,
		TotalInvested: state.TotalInvested,
	}

	for _, sym := range state.Symbols() {
		series, err := repo.Series(ctx, sym)
		if err != nil {
			// Symbol was never resolvable; it holds nothing
			continue
		}
		last := series.Last()
		raw := state.RawHoldings(sym, last.Factor)
		value := raw * last.Open

		sum.Positions = append(sum.Positions, Position{
			Symbol:    strings.ToUpper(sym),
			Quantity:  raw,
			LastPrice: last.Open,
			Value:     value,
		})
		sum.TotalValue += value
	}

	sum.TotalMoney = sum.TotalValue + sum.Cash
	if sum.TotalInvested > 0 {
		sum.GainPercent = (sum.TotalMoney/sum.TotalInvested - 1) * 100
	}

	return sum, nil
}
