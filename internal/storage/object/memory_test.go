// internal/storage/object/memory_test.go
package object

import (
	"context"
	"errors"
	"testing"

	"github.com/jtrask/folio/internal/core"
)

func TestMemory_ImplementsStore(t *testing.T) {
	var _ Store = (*Memory)(nil)
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, core.ErrObjectNotFound) {
		t.Errorf("expected OBJECT_NOT_FOUND, got %v", err)
	}

	if err := m.Put(ctx, "transactions.json", []byte("[]")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := m.Get(ctx, "transactions.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("got %q, want %q", got, "[]")
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Put(ctx, "k", []byte("abc"))
	got, _ := m.Get(ctx, "k")
	got[0] = 'x'

	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Error("mutating a returned slice must not affect the store")
	}
}

func TestMemory_ListByPrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Put(ctx, "stock_data/aapl_data.json", []byte("a"))
	m.Put(ctx, "stock_data/tsla_data.json", []byte("b"))
	m.Put(ctx, "tokens.json", []byte("t"))

	keys, err := m.List(ctx, "stock_data/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 keys, got %d", len(keys))
	}
}
