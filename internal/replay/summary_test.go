package replay

import (
	"context"
	"math"
	"testing"

	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/pricedata"
)

func TestSummarize(t *testing.T) {
	fixtures := map[string][]session{
		"abc": flatWeek, // last open 108
		"xyz": {
			{date: "2021-03-01", open: 50, close: 51},
			{date: "2021-03-08", open: 55, close: 56},
		},
	}
	repo := newRepo(t, fixtures)
	r := New(repo, pricedata.NewResolver(10), nil)

	res, err := r.Run(context.Background(), []core.Transaction{
		{Symbol: "abc", Date: "2021-03-01", Action: "buy", Quantity: 10}, // 1000 invested
		{Symbol: "xyz", Date: "2021-03-01", Action: "buy", Quantity: 4},  // 200 invested
		{Symbol: "abc", Date: "2021-03-03", Action: "sell", Quantity: 2}, // +208 cash
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	sum, err := Summarize(context.Background(), res.State, repo)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if len(sum.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(sum.Positions))
	}
	// Sorted by symbol for deterministic output
	if sum.Positions[0].Symbol != "ABC" || sum.Positions[1].Symbol != "XYZ" {
		t.Errorf("positions out of order: %+v", sum.Positions)
	}

	abc := sum.Positions[0]
	if abc.Quantity != 8 || abc.LastPrice != 108 || abc.Value != 864 {
		t.Errorf("ABC position = %+v, want qty 8 @ 108 = 864", abc)
	}
	xyz := sum.Positions[1]
	if xyz.Quantity != 4 || xyz.LastPrice != 55 || xyz.Value != 220 {
		t.Errorf("XYZ position = %+v, want qty 4 @ 55 = 220", xyz)
	}

	if sum.TotalValue != 1084 {
		t.Errorf("total value = %v, want 1084", sum.TotalValue)
	}
	if sum.Cash != 208 {
		t.Errorf("cash = %v, want 208", sum.Cash)
	}
	if sum.TotalMoney != 1292 {
		t.Errorf("total money = %v, want 1292", sum.TotalMoney)
	}
	if sum.TotalInvested != 1200 {
		t.Errorf("invested = %v, want 1200", sum.TotalInvested)
	}

	wantGain := (1292.0/1200.0 - 1) * 100
	if math.Abs(sum.GainPercent-wantGain) > 1e-9 {
		t.Errorf("gain = %v, want %v", sum.GainPercent, wantGain)
	}
}

func TestSummarize_ZeroInvested(t *testing.T) {
	repo := newRepo(t, map[string][]session{"abc": flatWeek})

	sum, err := Summarize(context.Background(), NewState(), repo)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if sum.GainPercent != 0 {
		t.Errorf("gain with zero invested = %v, want 0 (guarded)", sum.GainPercent)
	}
	if sum.TotalMoney != 0 {
		t.Errorf("total money = %v, want 0", sum.TotalMoney)
	}
}

func TestSummarize_SplitValuation(t *testing.T) {
	// Raw holdings at the last session use that session's factor (1.0)
	fixtures := map[string][]session{"spl": {
		{date: "2024-06-07", open: 100, close: 100},
		{date: "2024-06-10", open: 50, close: 50, split: 2},
	}}
	repo := newRepo(t, fixtures)
	r := New(repo, pricedata.NewResolver(10), nil)

	res, err := r.Run(context.Background(), []core.Transaction{
		{Symbol: "spl", Date: "2024-06-07", Action: "buy", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	sum, err := Summarize(context.Background(), res.State, repo)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(sum.Positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(sum.Positions))
	}
	p := sum.Positions[0]
	if p.Quantity != 2 || p.LastPrice != 50 || p.Value != 100 {
		t.Errorf("position = %+v, want 2 raw shares @ 50 = 100", p)
	}
}
