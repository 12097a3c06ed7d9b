package ledger

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/storage/object"
)

// Store persists the append-only transaction ledger as a single JSON array
// in object storage.
type Store struct {
	store  object.Store
	key    string
	logger *zap.Logger
}

// NewStore creates a ledger store reading and writing the given key
func NewStore(store object.Store, key string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{store: store, key: key, logger: logger}
}

// Load returns the ledger in stored order. A missing or unreadable ledger
// starts empty rather than failing: the ledger is created on first append.
func (s *Store) Load(ctx context.Context) ([]core.Transaction, error) {
	data, err := s.store.Get(ctx, s.key)
	if errors.Is(err, core.ErrObjectNotFound) {
		return []core.Transaction{}, nil
	}
	if err != nil {
		return nil, err
	}

	var txs []core.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		s.logger.Warn("ledger unparseable, starting empty", zap.Error(err))
		return []core.Transaction{}, nil
	}
	return txs, nil
}

// Append adds one transaction to the end of the ledger
func (s *Store) Append(ctx context.Context, tx core.Transaction) error {
	return s.AppendAll(ctx, []core.Transaction{tx})
}

// AppendAll adds transactions to the end of the ledger in one write
func (s *Store) AppendAll(ctx context.Context, txs []core.Transaction) error {
	existing, err := s.Load(ctx)
	if err != nil {
		return err
	}
	existing = append(existing, txs...)

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}
	return s.store.Put(ctx, s.key, data)
}
