package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jtrask/folio/internal/core"
	"github.com/jtrask/folio/internal/storage/object"
)

// Token types
const (
	TypeAdmin = "admin"
	TypeUser  = "user"
)

// Token is one issued API token with its validity window
type Token struct {
	Value     string    `json:"token"`
	Username  string    `json:"username"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	ValidFrom time.Time `json:"valid_from"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ActiveAt reports whether the token's validity window covers now
func (t Token) ActiveAt(now time.Time) bool {
	return !now.Before(t.ValidFrom) && !now.After(t.ExpiresAt)
}

// IsAdmin reports whether the token grants admin privileges
func (t Token) IsAdmin() bool {
	return t.Type == TypeAdmin
}

// tokenFile is the stored shape of the token set
type tokenFile struct {
	Tokens []Token `json:"tokens"`
}

// Store manages issued tokens in object storage
type Store struct {
	store object.Store
	key   string
}

// NewStore creates a token store backed by the given object key
func NewStore(store object.Store, key string) *Store {
	return &Store{store: store, key: key}
}

// List returns every issued token
func (s *Store) List(ctx context.Context) ([]Token, error) {
	data, err := s.store.Get(ctx, s.key)
	if errors.Is(err, core.ErrObjectNotFound) {
		return []Token{}, nil
	}
	if err != nil {
		return nil, err
	}

	var f tokenFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return f.Tokens, nil
}

// Issue creates, persists, and returns a new token
func (s *Store) Issue(ctx context.Context, username, tokenType string, validFrom, expiresAt time.Time) (*Token, error) {
	if tokenType != TypeAdmin && tokenType != TypeUser {
		return nil, core.ErrTokenInvalid
	}

	tokens, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	tok := Token{
		Value:     uuid.NewString(),
		Username:  username,
		Type:      tokenType,
		CreatedAt: time.Now().UTC(),
		ValidFrom: validFrom,
		ExpiresAt: expiresAt,
	}
	tokens = append(tokens, tok)

	if err := s.save(ctx, tokens); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Revoke removes a token by value
func (s *Store) Revoke(ctx context.Context, value string) error {
	tokens, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := tokens[:0]
	found := false
	for _, t := range tokens {
		if t.Value == value {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return core.ErrTokenInvalid
	}
	return s.save(ctx, kept)
}

// Verify checks a presented token value against the store at the given
// instant. Returns TOKEN_INVALID for unknown values, TOKEN_EXPIRED for
// known values outside their validity window.
func (s *Store) Verify(ctx context.Context, value string, now time.Time) (*Token, error) {
	if value == "" {
		return nil, core.ErrTokenMissing
	}

	tokens, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, t := range tokens {
		if t.Value != value {
			continue
		}
		if !t.ActiveAt(now) {
			return nil, core.ErrTokenExpired
		}
		tok := t
		return &tok, nil
	}
	return nil, core.ErrTokenInvalid
}

func (s *Store) save(ctx context.Context, tokens []Token) error {
	data, err := json.MarshalIndent(tokenFile{Tokens: tokens}, "", "  ")
	if err != nil {
		return err
	}
	return s.store.Put(ctx, s.key, data)
}
