package core

import (
	"strings"
	"time"
)

// Action represents a ledger transaction action
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// ParseAction normalizes a raw action string. Anything outside the taxonomy
// returns the zero Action; callers decide how to reject it.
func ParseAction(s string) Action {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return ActionBuy
	case "sell":
		return ActionSell
	}
	return Action("")
}

// Transaction is one row of the ledger driving a replay
type Transaction struct {
	Symbol   string  `json:"stock"`
	Date     string  `json:"date"` // YYYY-MM-DD as stored in the ledger
	Action   string  `json:"action"`
	Quantity float64 `json:"quantity"`
}

// RequestedDate parses the ledger date at UTC midnight
func (t Transaction) RequestedDate() (time.Time, error) {
	return time.Parse("2006-01-02", t.Date)
}

// IsValid checks the fields the engine assumes pre-validated
func (t Transaction) IsValid() bool {
	return t.Symbol != "" && t.Date != "" && t.Quantity > 0
}

// PricePoint represents one trading session for one symbol
type PricePoint struct {
	Date        time.Time
	Open        float64
	Close       float64
	SplitFactor float64
	// Factor is the cumulative split factor: the product of every split
	// ratio recorded after this session through the most recent one. It
	// converts a share count traded at this session into
	// present-day-equivalent units. The most recent session carries 1.0.
	Factor float64
}

// DailySample is one row of the daily valuation series
type DailySample struct {
	Date          time.Time `json:"date"`
	TotalInvested float64   `json:"total_invested"`
	TotalValue    float64   `json:"total_value"`
}

// LogEntry is one row of the replayed transaction log
type LogEntry struct {
	RequestedDate string  `json:"requested_date"`
	ResolvedDate  string  `json:"resolved_date"`
	Symbol        string  `json:"symbol"` // upper-cased
	Action        Action  `json:"action"`
	Quantity      float64 `json:"quantity"`
	Price         float64 `json:"price"`
	RawHoldings   float64 `json:"raw_holdings"`
	HoldingValue  float64 `json:"holding_value"`
	Cash          float64 `json:"cash"`
	TotalInvested float64 `json:"total_invested"`
	AdjustedQty   float64 `json:"adjusted_quantity"`
}

// Diagnostic records a transaction the replay skipped and why
type Diagnostic struct {
	Index  int    `json:"index"` // position in the input ledger
	Symbol string `json:"symbol"`
	Date   string `json:"date"`
	Err    *Error `json:"error"`
}

// Day truncates t to UTC midnight. All engine date comparisons happen on
// this grid.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
