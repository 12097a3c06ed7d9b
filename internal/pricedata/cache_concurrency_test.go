package pricedata

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ConcurrentSeries(t *testing.T) {
	counted := &countingRepo{inner: NewStoreRepository(seedStore(t), "stock_data", nil)}
	cache := NewCache(counted)
	ctx := context.Background()

	const workers = 16
	results := make([]*Series, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := cache.Series(ctx, "aapl")
			require.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	// Every caller sees the same cached instance
	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i], "worker %d got a different series", i)
	}
	// The in-flight guard shares one fetch; everyone else waits for it
	assert.Equal(t, int64(1), counted.loads.Load())
	assert.Equal(t, 1, cache.Cached())
}

// barrierRepo blocks every load until released, exposing how many fetches
// are in flight at once.
type barrierRepo struct {
	entered chan string
	release chan struct{}
	series  *Series
}

func (b *barrierRepo) Series(ctx context.Context, symbol string) (*Series, error) {
	b.entered <- symbol
	<-b.release
	return b.series, nil
}

func TestCache_PreloadFetchesDistinctSymbolsInParallel(t *testing.T) {
	s, err := NewSeries("any", []byte(`[{"date": "2021-03-01T00:00:00.000Z", "open": 100, "close": 101}]`))
	require.NoError(t, err)

	repo := &barrierRepo{
		entered: make(chan string, 4),
		release: make(chan struct{}),
		series:  s,
	}
	cache := NewCache(repo)

	done := make(chan struct{})
	go func() {
		cache.Preload(context.Background(), []string{"aapl", "msft", "amzn", "goog"})
		close(done)
	}()

	// Every fetch must be in flight before any is allowed to finish; a
	// serialized cache would park three of them behind the first
	for i := 0; i < 4; i++ {
		select {
		case <-repo.entered:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d loads in flight, want 4", i)
		}
	}
	close(repo.release)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("preload did not finish")
	}
	assert.Equal(t, 4, cache.Cached())
}

func TestCache_ConcurrentPreloadAndRead(t *testing.T) {
	counted := &countingRepo{inner: NewStoreRepository(seedStore(t), "stock_data", nil)}
	cache := NewCache(counted)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		cache.Preload(ctx, []string{"aapl", "AAPL", "aapl"})
	}()
	go func() {
		defer wg.Done()
		s, err := cache.Series(ctx, "aapl")
		require.NoError(t, err)
		require.NotNil(t, s)
	}()
	wg.Wait()

	assert.Equal(t, 1, cache.Cached())
}
