package replay

import (
	"sort"
	"strings"
)

// PortfolioState is the mutable aggregate carried through a replay pass.
// Holdings are kept in adjusted (present-day-equivalent) units: raw traded
// quantity times the cumulative split factor at the trade's resolved date.
// Each pass owns its own state; nothing persists between runs.
type PortfolioState struct {
	Cash          float64
	TotalInvested float64

	holdings map[string]float64 // lower-cased symbol -> adjusted units
}

// NewState creates an empty portfolio state
func NewState() *PortfolioState {
	return &PortfolioState{holdings: make(map[string]float64)}
}

func stateKey(symbol string) string {
	return strings.ToLower(symbol)
}

// Buy applies a purchase. A cost beyond available cash is covered by newly
// injected capital, so TotalInvested only ever grows.
func (s *PortfolioState) Buy(symbol string, quantity, price, factor float64) {
	cost := price * quantity
	if cost > s.Cash {
		s.TotalInvested += cost - s.Cash
		s.Cash = 0
	} else {
		s.Cash -= cost
	}
	s.holdings[stateKey(symbol)] += quantity * factor
}

// Sell applies a sale. ok is false when quantity exceeds the raw shares
// available at the given factor; state is untouched in that case.
func (s *PortfolioState) Sell(symbol string, quantity, price, factor float64) (ok bool) {
	if quantity > s.RawHoldings(symbol, factor) {
		return false
	}
	s.Cash += price * quantity
	s.holdings[stateKey(symbol)] -= quantity * factor
	return true
}

// AdjustedQty returns the holdings for symbol in adjusted units
func (s *PortfolioState) AdjustedQty(symbol string) float64 {
	return s.holdings[stateKey(symbol)]
}

// RawHoldings converts the adjusted holdings back to a raw share count at
// the date whose cumulative factor is given. The factor must match the date
// being evaluated, not the purchase date.
func (s *PortfolioState) RawHoldings(symbol string, factor float64) float64 {
	return s.holdings[stateKey(symbol)] / factor
}

// Symbols returns every symbol the state has touched, sorted for
// deterministic iteration.
func (s *PortfolioState) Symbols() []string {
	syms := make([]string, 0, len(s.holdings))
	for sym := range s.holdings {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}
