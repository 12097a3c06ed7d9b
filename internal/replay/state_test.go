package replay

import "testing"

func TestState_BuyUsesCashBeforeInjecting(t *testing.T) {
	s := NewState()

	// No cash: whole cost is injected capital
	s.Buy("abc", 10, 10, 1.0)
	if s.TotalInvested != 100 || s.Cash != 0 {
		t.Errorf("invested = %v cash = %v, want 100 / 0", s.TotalInvested, s.Cash)
	}

	// Sale builds cash
	if !s.Sell("abc", 10, 15, 1.0) {
		t.Fatal("sell should succeed")
	}
	if s.Cash != 150 {
		t.Errorf("cash = %v, want 150", s.Cash)
	}

	// Cost below cash draws down cash only
	s.Buy("abc", 10, 10, 1.0)
	if s.Cash != 50 || s.TotalInvested != 100 {
		t.Errorf("cash = %v invested = %v, want 50 / 100", s.Cash, s.TotalInvested)
	}

	// Cost above remaining cash injects only the shortfall
	s.Buy("abc", 8, 10, 1.0)
	if s.Cash != 0 {
		t.Errorf("cash = %v, want 0", s.Cash)
	}
	if s.TotalInvested != 130 {
		t.Errorf("invested = %v, want 130 (injected 80-50)", s.TotalInvested)
	}
}

func TestState_SellRejectsOversell(t *testing.T) {
	s := NewState()
	s.Buy("abc", 5, 10, 1.0)

	if s.Sell("abc", 6, 10, 1.0) {
		t.Error("oversell should be rejected")
	}
	if s.AdjustedQty("abc") != 5 || s.Cash != 0 {
		t.Errorf("state changed on rejected sell: qty=%v cash=%v",
			s.AdjustedQty("abc"), s.Cash)
	}
}

func TestState_SymbolCaseInsensitive(t *testing.T) {
	s := NewState()
	s.Buy("AAPL", 5, 10, 1.0)

	if s.AdjustedQty("aapl") != 5 {
		t.Error("holdings should be case-insensitive by symbol")
	}
	syms := s.Symbols()
	if len(syms) != 1 || syms[0] != "aapl" {
		t.Errorf("Symbols() = %v, want [aapl]", syms)
	}
}
