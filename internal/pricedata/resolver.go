package pricedata

import (
	"time"

	"github.com/jtrask/folio/internal/core"
)

// DefaultProbeDays is how many calendar days past the requested date the
// resolver probes for a trading session. Approximates "settle on the next
// trading day" without a holiday calendar.
const DefaultProbeDays = 10

// Resolver maps requested trade dates to executable sessions
type Resolver struct {
	probeDays int
}

// NewResolver creates a Resolver probing up to probeDays forward.
// probeDays <= 0 falls back to DefaultProbeDays.
func NewResolver(probeDays int) *Resolver {
	if probeDays <= 0 {
		probeDays = DefaultProbeDays
	}
	return &Resolver{probeDays: probeDays}
}

// Resolve returns the session to execute against for a trade requested on
// the given date: the exact day when it traded, otherwise the first session
// within the probe window. NO_TRADING_DAY when the window is exhausted.
func (r *Resolver) Resolve(s *Series, requested time.Time) (core.PricePoint, error) {
	day := core.Day(requested)
	for i := 0; i <= r.probeDays; i++ {
		if p, ok := s.On(day); ok {
			return p, nil
		}
		day = day.AddDate(0, 0, 1)
	}
	return core.PricePoint{}, core.ErrNoTradingDay
}
