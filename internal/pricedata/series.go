package pricedata

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jtrask/folio/internal/core"
)

// rawRecord is one trading session as stored in the price feed
type rawRecord struct {
	Date        string  `json:"date"` // ISO-8601 timestamp
	Open        float64 `json:"open"`
	Close       float64 `json:"close"`
	SplitFactor float64 `json:"splitFactor"`
}

// Series is a symbol's price history, ascending by date, annotated with the
// cumulative split factor per session. Immutable after construction.
type Series struct {
	Symbol string
	Points []core.PricePoint

	byDate map[time.Time]int // first session index per calendar day
}

// NewSeries builds a Series from raw feed records. Records may arrive in any
// order. Returns EMPTY_SERIES when no record carries a parseable date.
func NewSeries(symbol string, raw []byte) (*Series, error) {
	var records []rawRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, core.WrapError(core.ErrEmptySeries, err)
	}
	return FromRecords(symbol, records)
}

// FromRecords builds a Series from already-decoded records
func FromRecords(symbol string, records []rawRecord) (*Series, error) {
	points := make([]core.PricePoint, 0, len(records))
	for _, r := range records {
		if r.Date == "" {
			return nil, core.WrapError(core.ErrEmptySeries,
				fmt.Errorf("record without date for %s", symbol))
		}
		d, err := time.Parse(time.RFC3339, r.Date)
		if err != nil {
			return nil, core.WrapError(core.ErrEmptySeries,
				fmt.Errorf("bad date %q for %s: %w", r.Date, symbol, err))
		}
		split := r.SplitFactor
		if split == 0 {
			split = 1.0 // feed omits the field on non-split days
		}
		points = append(points, core.PricePoint{
			Date:        core.Day(d),
			Open:        r.Open,
			Close:       r.Close,
			SplitFactor: split,
		})
	}

	if len(points) == 0 {
		return nil, core.WrapError(core.ErrEmptySeries,
			fmt.Errorf("no price records for %s", symbol))
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	// The most recent session carries factor 1.0; walking backward, each
	// earlier session accumulates every split recorded after it. A share
	// bought at session i therefore converts to present-day units by
	// multiplying with Factor[i].
	points[len(points)-1].Factor = 1.0
	for i := len(points) - 2; i >= 0; i-- {
		points[i].Factor = points[i+1].Factor * points[i+1].SplitFactor
	}

	byDate := make(map[time.Time]int, len(points))
	for i, p := range points {
		if _, ok := byDate[p.Date]; !ok {
			byDate[p.Date] = i
		}
	}

	return &Series{Symbol: symbol, Points: points, byDate: byDate}, nil
}

// On returns the session on the exact calendar day, if one exists
func (s *Series) On(day time.Time) (core.PricePoint, bool) {
	i, ok := s.byDate[core.Day(day)]
	if !ok {
		return core.PricePoint{}, false
	}
	return s.Points[i], true
}

// LatestOnOrBefore returns the most recent session dated on or before day,
// forward-filling over non-trading days. ok is false when the series starts
// after day.
func (s *Series) LatestOnOrBefore(day time.Time) (core.PricePoint, bool) {
	d := core.Day(day)
	i := sort.Search(len(s.Points), func(i int) bool {
		return s.Points[i].Date.After(d)
	})
	if i == 0 {
		return core.PricePoint{}, false
	}
	return s.Points[i-1], true
}

// Last returns the most recent session
func (s *Series) Last() core.PricePoint {
	return s.Points[len(s.Points)-1]
}

// First returns the oldest session
func (s *Series) First() core.PricePoint {
	return s.Points[0]
}
