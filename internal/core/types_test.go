package core

import (
	"testing"
	"time"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"buy", ActionBuy},
		{"BUY", ActionBuy},
		{" Sell ", ActionSell},
		{"purchase", Action("")},
		{"", Action("")},
	}
	for _, tt := range tests {
		if got := ParseAction(tt.in); got != tt.want {
			t.Errorf("ParseAction(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTransaction_IsValid(t *testing.T) {
	tx := Transaction{Symbol: "aapl", Date: "2021-04-26", Action: "buy", Quantity: 10}
	if !tx.IsValid() {
		t.Error("expected valid transaction")
	}

	invalid := Transaction{Symbol: "", Date: "2021-04-26", Quantity: 0}
	if invalid.IsValid() {
		t.Error("expected invalid transaction")
	}
}

func TestTransaction_RequestedDate(t *testing.T) {
	tx := Transaction{Symbol: "msft", Date: "2020-01-01", Action: "buy", Quantity: 1}
	d, err := tx.RequestedDate()
	if err != nil {
		t.Fatalf("RequestedDate() error = %v", err)
	}
	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("RequestedDate() = %v, want %v", d, want)
	}

	bad := Transaction{Date: "01/01/2020"}
	if _, err := bad.RequestedDate(); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2021, 7, 2, 3, 14, 15, 0, loc)
	got := Day(in)
	want := time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Day() = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Error("Day() should return UTC")
	}
}
