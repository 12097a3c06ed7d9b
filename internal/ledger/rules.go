package ledger

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/pricedata"
)

// Frequency is the cadence of a generated schedule
type Frequency string

const (
	Monthly Frequency = "monthly"
	Weekly  Frequency = "weekly"
)

// Schedule bounds a rule generator. All dates are explicit parameters;
// generators never consult the wall clock.
type Schedule struct {
	Frequency Frequency
	Start     time.Time
	End       time.Time
}

// DollarCostAverage emits buy transactions investing a fixed dollar amount
// on each schedule tick, sized against the session close and rounded to six
// decimals. Monthly buys land on the first session of each month; weekly
// buys on the first session on or after each Sunday.
func DollarCostAverage(series *pricedata.Series, amount float64, sched Schedule) ([]core.Transaction, error) {
	return generate(series, sched, func(p core.PricePoint) float64 {
		return round6(amount / p.Close)
	})
}

// FixedQuantity emits buy transactions for a fixed share count on each
// schedule tick.
func FixedQuantity(series *pricedata.Series, quantity float64, sched Schedule) ([]core.Transaction, error) {
	return generate(series, sched, func(core.PricePoint) float64 {
		return quantity
	})
}

func generate(series *pricedata.Series, sched Schedule, qty func(core.PricePoint) float64) ([]core.Transaction, error) {
	switch sched.Frequency {
	case Monthly:
		return monthly(series, sched, qty), nil
	case Weekly:
		return weekly(series, sched, qty), nil
	}
	return nil, core.WrapError(core.ErrConfigInvalid,
		fmt.Errorf("unknown frequency %q", sched.Frequency))
}

func monthly(series *pricedata.Series, sched Schedule, qty func(core.PricePoint) float64) []core.Transaction {
	var txs []core.Transaction
	first, last := series.First().Date, series.Last().Date

	start := core.Day(sched.Start)
	end := core.Day(sched.End)

	for y := start.Year(); y <= end.Year(); y++ {
		for m := time.January; m <= time.December; m++ {
			target := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
			if target.Before(start) || target.After(end) {
				continue
			}
			if target.Before(first) || target.After(last) {
				continue
			}
			p, ok := firstSessionOnOrAfter(series, target)
			if !ok || p.Date.Year() != y || p.Date.Month() != m {
				continue
			}
			txs = append(txs, buyAt(series.Symbol, p, qty(p)))
		}
	}
	return txs
}

func weekly(series *pricedata.Series, sched Schedule, qty func(core.PricePoint) float64) []core.Transaction {
	var txs []core.Transaction
	last := series.Last().Date
	end := core.Day(sched.End)

	current := nextSunday(core.Day(sched.Start))
	for !current.After(end) {
		if current.After(last) {
			break
		}
		p, ok := firstSessionOnOrAfter(series, current)
		if !ok {
			break
		}
		txs = append(txs, buyAt(series.Symbol, p, qty(p)))
		current = current.AddDate(0, 0, 7)
	}
	return txs
}

func buyAt(symbol string, p core.PricePoint, quantity float64) core.Transaction {
	return core.Transaction{
		Symbol:   symbol,
		Date:     p.Date.Format("2006-01-02"),
		Action:   string(core.ActionBuy),
		Quantity: quantity,
	}
}

func firstSessionOnOrAfter(series *pricedata.Series, day time.Time) (core.PricePoint, bool) {
	points := series.Points
	i := sort.Search(len(points), func(i int) bool {
		return !points[i].Date.Before(day)
	})
	if i == len(points) {
		return core.PricePoint{}, false
	}
	return points[i], true
}

// nextSunday returns the first Sunday strictly after day
func nextSunday(day time.Time) time.Time {
	offset := (7 - int(day.Weekday())) % 7
	if offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}

func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}
