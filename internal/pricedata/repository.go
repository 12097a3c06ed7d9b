package pricedata

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/storage/object"
)

// Repository provides price series per symbol
type Repository interface {
	Series(ctx context.Context, symbol string) (*Series, error)
}

// StoreRepository loads price histories from object storage, one JSON file
// per symbol under a configurable prefix.
type StoreRepository struct {
	store  object.Store
	prefix string
	logger *zap.Logger
}

// NewStoreRepository creates a repository reading <prefix>/<symbol>_data.json
func NewStoreRepository(store object.Store, prefix string, logger *zap.Logger) *StoreRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreRepository{
		store:  store,
		prefix: strings.TrimSuffix(prefix, "/"),
		logger: logger,
	}
}

func (r *StoreRepository) key(symbol string) string {
	return fmt.Sprintf("%s/%s_data.json", r.prefix, strings.ToLower(symbol))
}

// Series loads and builds the series for a symbol. A missing object maps to
// EMPTY_SERIES: the symbol simply has no usable history.
func (r *StoreRepository) Series(ctx context.Context, symbol string) (*Series, error) {
	data, err := r.store.Get(ctx, r.key(symbol))
	if err != nil {
		r.logger.Warn("price history unavailable",
			zap.String("symbol", symbol), zap.Error(err))
		return nil, core.WrapError(core.ErrEmptySeries, err)
	}
	return NewSeries(symbol, data)
}

// Cache wraps a Repository with a per-session series cache. It is owned by
// a single replay session, not shared process-wide; series are read-only
// once built.
type Cache struct {
	inner Repository

	mu       sync.Mutex
	series   map[string]*Series
	errs     map[string]error
	inflight map[string]chan struct{}
}

// NewCache creates an empty session cache over inner
func NewCache(inner Repository) *Cache {
	return &Cache{
		inner:    inner,
		series:   make(map[string]*Series),
		errs:     make(map[string]error),
		inflight: make(map[string]chan struct{}),
	}
}

// Series returns the cached series for symbol, loading it on first
// reference. Load failures are cached too: a symbol without usable history
// stays unusable for the whole session. The fetch happens outside the lock,
// so distinct symbols load in parallel; concurrent callers for the same
// symbol share one fetch.
func (c *Cache) Series(ctx context.Context, symbol string) (*Series, error) {
	key := strings.ToLower(symbol)

	for {
		c.mu.Lock()
		if s, ok := c.series[key]; ok {
			c.mu.Unlock()
			return s, nil
		}
		if err, ok := c.errs[key]; ok {
			c.mu.Unlock()
			return nil, err
		}
		if ch, ok := c.inflight[key]; ok {
			// Another caller is already fetching this symbol
			c.mu.Unlock()
			select {
			case <-ch:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}

		ch := make(chan struct{})
		c.inflight[key] = ch
		c.mu.Unlock()

		s, err := c.inner.Series(ctx, symbol)

		c.mu.Lock()
		if err != nil {
			c.errs[key] = err
		} else {
			c.series[key] = s
		}
		delete(c.inflight, key)
		close(ch)
		c.mu.Unlock()

		return s, err
	}
}

// Preload fetches series for distinct symbols concurrently. Loading has no
// cross-symbol dependency, so this is safe; replay itself stays sequential.
// Per-symbol failures are cached and surface on first use.
func (c *Cache) Preload(ctx context.Context, symbols []string) {
	seen := make(map[string]struct{}, len(symbols))
	var wg sync.WaitGroup
	for _, sym := range symbols {
		key := strings.ToLower(sym)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			c.Series(ctx, sym) // failure is cached, surfaces on use
		}(sym)
	}
	wg.Wait()
}

// Cached returns how many series the session has loaded
func (c *Cache) Cached() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.series)
}
