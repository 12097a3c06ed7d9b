package replay

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/pricedata"
)

func newSampler(t *testing.T, fixtures map[string][]session) *Sampler {
	t.Helper()
	return NewSampler(newRepo(t, fixtures), pricedata.NewResolver(10), nil)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSampler_SpansEveryCalendarDay(t *testing.T) {
	fixtures := map[string][]session{"abc": flatWeek} // 2021-03-01 .. 03-05
	s := newSampler(t, fixtures)

	samples, diags, err := s.Run(context.Background(), []core.Transaction{
		{Symbol: "abc", Date: "2021-03-02", Action: "buy", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	// From the first resolved transaction through the last session
	if len(samples) != 4 {
		t.Fatalf("expected 4 samples (03-02..03-05), got %d", len(samples))
	}
	if !samples[0].Date.Equal(day(2021, 3, 2)) {
		t.Errorf("first sample = %v, want 2021-03-02", samples[0].Date)
	}
	if !samples[3].Date.Equal(day(2021, 3, 5)) {
		t.Errorf("last sample = %v, want 2021-03-05", samples[3].Date)
	}
}

func TestSampler_ForwardFillsNonTradingDays(t *testing.T) {
	fixtures := map[string][]session{"amzn": {
		{date: "2021-07-02", open: 100, close: 101},
		{date: "2021-07-06", open: 120, close: 121},
	}}
	s := newSampler(t, fixtures)

	samples, _, err := s.Run(context.Background(), []core.Transaction{
		{Symbol: "amzn", Date: "2021-07-02", Action: "buy", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// 5 calendar days: Fri through Tue, weekend included
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}

	// Weekend days carry Friday's price; invested stays a step function
	for i := 0; i < 3; i++ {
		if samples[i].TotalValue != 200 {
			t.Errorf("sample %d value = %v, want 200 (forward-filled)", i, samples[i].TotalValue)
		}
		if samples[i].TotalInvested != 200 {
			t.Errorf("sample %d invested = %v, want 200", i, samples[i].TotalInvested)
		}
	}
	// Tuesday revalues at the new session
	if samples[4].TotalValue != 240 {
		t.Errorf("last sample value = %v, want 240", samples[4].TotalValue)
	}
	if samples[4].TotalInvested != 200 {
		t.Errorf("invested moved without a transaction: %v", samples[4].TotalInvested)
	}
}

func TestSampler_ValueContinuousAcrossSplit(t *testing.T) {
	// 2-for-1 split with the price exactly halving: holding value must not
	// jump across the split day
	fixtures := map[string][]session{"spl": {
		{date: "2024-06-06", open: 100, close: 100},
		{date: "2024-06-07", open: 100, close: 100},
		{date: "2024-06-10", open: 50, close: 50, split: 2},
	}}
	s := newSampler(t, fixtures)

	samples, _, err := s.Run(context.Background(), []core.Transaction{
		{Symbol: "spl", Date: "2024-06-06", Action: "buy", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, sample := range samples {
		if sample.TotalValue != 100 {
			t.Errorf("value on %s = %v, want 100 across the split",
				sample.Date.Format("2006-01-02"), sample.TotalValue)
		}
	}
}

func TestSampler_AppliesOnResolvedDate(t *testing.T) {
	// A Sunday-dated buy resolves to Tuesday; invested must step on the
	// resolved day, not the requested one
	fixtures := map[string][]session{"amzn": {
		{date: "2021-07-02", open: 100, close: 101},
		{date: "2021-07-06", open: 120, close: 121},
	}}
	s := newSampler(t, fixtures)

	samples, _, err := s.Run(context.Background(), []core.Transaction{
		{Symbol: "amzn", Date: "2021-07-02", Action: "buy", Quantity: 1},
		{Symbol: "amzn", Date: "2021-07-04", Action: "buy", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	byDate := make(map[string]core.DailySample)
	for _, s := range samples {
		byDate[s.Date.Format("2006-01-02")] = s
	}

	if got := byDate["2021-07-04"].TotalInvested; got != 100 {
		t.Errorf("invested on requested (unresolved) day = %v, want 100", got)
	}
	if got := byDate["2021-07-06"].TotalInvested; got != 220 {
		t.Errorf("invested on resolved day = %v, want 220", got)
	}
}

func TestSampler_MixedSymbols(t *testing.T) {
	fixtures := map[string][]session{
		"abc": flatWeek,
		"xyz": {
			{date: "2021-03-01", open: 50, close: 51},
			{date: "2021-03-08", open: 55, close: 56},
		},
	}
	s := newSampler(t, fixtures)

	samples, diags, err := s.Run(context.Background(), []core.Transaction{
		{Symbol: "abc", Date: "2021-03-01", Action: "buy", Quantity: 1},
		{Symbol: "xyz", Date: "2021-03-01", Action: "buy", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	// Span extends to the latest session across all referenced series
	last := samples[len(samples)-1]
	if !last.Date.Equal(day(2021, 3, 8)) {
		t.Errorf("span ends %v, want 2021-03-08", last.Date)
	}
	// abc forward-fills at 108, xyz revalues at 55
	if want := 1*108.0 + 2*55.0; last.TotalValue != want {
		t.Errorf("final value = %v, want %v", last.TotalValue, want)
	}
}

func TestSampler_OversellDiagnosed(t *testing.T) {
	s := newSampler(t, map[string][]session{"abc": flatWeek})

	samples, diags, err := s.Run(context.Background(), []core.Transaction{
		{Symbol: "abc", Date: "2021-03-01", Action: "buy", Quantity: 2},
		{Symbol: "abc", Date: "2021-03-02", Action: "sell", Quantity: 5},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(diags) != 1 || !errors.Is(diags[0].Err, core.ErrInsufficientHoldings) {
		t.Fatalf("expected INSUFFICIENT_HOLDINGS diagnostic, got %+v", diags)
	}
	// The rejected sell leaves the curve untouched
	for _, sample := range samples {
		if sample.TotalInvested != 200 {
			t.Errorf("invested on %v = %v, want 200", sample.Date, sample.TotalInvested)
		}
	}
}

func TestSampler_NoResolvableTransactions(t *testing.T) {
	s := newSampler(t, map[string][]session{"abc": flatWeek})

	samples, diags, err := s.Run(context.Background(), []core.Transaction{
		{Symbol: "missing", Date: "2021-03-01", Action: "buy", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("expected no samples, got %d", len(samples))
	}
	if len(diags) != 1 {
		t.Errorf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestSampler_OutOfOrderInput(t *testing.T) {
	// The sampler sorts by resolved date itself; shuffled input yields the
	// same curve
	fixtures := map[string][]session{"abc": flatWeek}
	ordered := []core.Transaction{
		{Symbol: "abc", Date: "2021-03-01", Action: "buy", Quantity: 3},
		{Symbol: "abc", Date: "2021-03-03", Action: "sell", Quantity: 1},
	}
	shuffled := []core.Transaction{ordered[1], ordered[0]}

	a, _, err := newSampler(t, fixtures).Run(context.Background(), ordered)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	b, _, err := newSampler(t, fixtures).Run(context.Background(), shuffled)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Error("transaction input order changed the daily series")
	}
}
