package ledger

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/pricedata"
)

// tradingDays builds a series of weekday sessions between start and end at
// a constant close price
func tradingDays(t *testing.T, symbol string, start, end time.Time, close float64) *pricedata.Series {
	t.Helper()
	out := "["
	first := true
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if !first {
			out += ","
		}
		first = false
		out += fmt.Sprintf(`{"date":"%sT00:00:00.000Z","open":%g,"close":%g}`,
			d.Format("2006-01-02"), close, close)
	}
	s, err := pricedata.NewSeries(symbol, []byte(out+"]"))
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	return s
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDollarCostAverage_Monthly(t *testing.T) {
	// Jan-Mar 2021; 2021-01-01 is a Friday but series starts on the 1st
	s := tradingDays(t, "aapl", date(2021, 1, 1), date(2021, 3, 31), 200)

	txs, err := DollarCostAverage(s, 100, Schedule{
		Frequency: Monthly,
		Start:     date(2021, 1, 1),
		End:       date(2021, 3, 31),
	})
	if err != nil {
		t.Fatalf("DollarCostAverage() error = %v", err)
	}

	if len(txs) != 3 {
		t.Fatalf("expected 3 monthly buys, got %d", len(txs))
	}

	// First session of each month; February 1st 2021 is a Monday
	wantDates := []string{"2021-01-01", "2021-02-01", "2021-03-01"}
	for i, tx := range txs {
		if tx.Date != wantDates[i] {
			t.Errorf("tx %d date = %s, want %s", i, tx.Date, wantDates[i])
		}
		if tx.Action != "buy" {
			t.Errorf("tx %d action = %s, want buy", i, tx.Action)
		}
		if tx.Quantity != 0.5 {
			t.Errorf("tx %d quantity = %v, want 0.5 ($100 / $200)", i, tx.Quantity)
		}
		if tx.Symbol != "aapl" {
			t.Errorf("tx %d symbol = %s, want aapl", i, tx.Symbol)
		}
	}
}

func TestDollarCostAverage_QuantityRounded(t *testing.T) {
	s := tradingDays(t, "aapl", date(2021, 1, 1), date(2021, 1, 29), 3)

	txs, err := DollarCostAverage(s, 100, Schedule{
		Frequency: Monthly,
		Start:     date(2021, 1, 1),
		End:       date(2021, 1, 31),
	})
	if err != nil {
		t.Fatalf("DollarCostAverage() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 buy, got %d", len(txs))
	}
	// 100/3 rounded to six decimals
	if txs[0].Quantity != 33.333333 {
		t.Errorf("quantity = %v, want 33.333333", txs[0].Quantity)
	}
}

func TestDollarCostAverage_Weekly(t *testing.T) {
	// Four full weeks; buys land on the Monday after each Sunday
	s := tradingDays(t, "msft", date(2021, 3, 1), date(2021, 3, 31), 100)

	txs, err := DollarCostAverage(s, 50, Schedule{
		Frequency: Weekly,
		Start:     date(2021, 3, 1), // Monday
		End:       date(2021, 3, 31),
	})
	if err != nil {
		t.Fatalf("DollarCostAverage() error = %v", err)
	}

	wantDates := []string{"2021-03-08", "2021-03-15", "2021-03-22", "2021-03-29"}
	if len(txs) != len(wantDates) {
		t.Fatalf("expected %d weekly buys, got %d", len(wantDates), len(txs))
	}
	for i, tx := range txs {
		if tx.Date != wantDates[i] {
			t.Errorf("tx %d date = %s, want %s", i, tx.Date, wantDates[i])
		}
	}
}

func TestFixedQuantity_Monthly(t *testing.T) {
	s := tradingDays(t, "tsla", date(2021, 1, 1), date(2021, 2, 28), 700)

	txs, err := FixedQuantity(s, 2, Schedule{
		Frequency: Monthly,
		Start:     date(2021, 1, 1),
		End:       date(2021, 2, 28),
	})
	if err != nil {
		t.Fatalf("FixedQuantity() error = %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 buys, got %d", len(txs))
	}
	for _, tx := range txs {
		if tx.Quantity != 2 {
			t.Errorf("quantity = %v, want 2 regardless of price", tx.Quantity)
		}
	}
}

func TestGenerate_UnknownFrequency(t *testing.T) {
	s := tradingDays(t, "aapl", date(2021, 1, 1), date(2021, 1, 31), 100)

	_, err := DollarCostAverage(s, 100, Schedule{Frequency: "daily"})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestSchedule_BoundsRespected(t *testing.T) {
	s := tradingDays(t, "aapl", date(2020, 1, 1), date(2021, 12, 31), 100)

	txs, err := DollarCostAverage(s, 100, Schedule{
		Frequency: Monthly,
		Start:     date(2021, 6, 1),
		End:       date(2021, 8, 31),
	})
	if err != nil {
		t.Fatalf("DollarCostAverage() error = %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 buys (Jun, Jul, Aug), got %d", len(txs))
	}
	for _, tx := range txs {
		d, _ := tx.RequestedDate()
		if d.Before(date(2021, 6, 1)) || d.After(date(2021, 8, 31)) {
			t.Errorf("tx outside schedule bounds: %s", tx.Date)
		}
	}
}
