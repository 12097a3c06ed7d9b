// internal/api/handler/api/tokens.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jtrask/folio/internal/api/response"
	"github.com/jtrask/folio/internal/auth"
	"github.com/jtrask/folio/internal/core"
)

const defaultTokenValidity = 365 * 24 * time.Hour

// TokenRequest is the request body for issuing a token.
type TokenRequest struct {
	Username  string `json:"username"`
	Type      string `json:"type"`       // admin | user
	ValidFrom string `json:"valid_from"` // YYYY-MM-DD, optional
	ExpiresAt string `json:"expires_at"` // YYYY-MM-DD, optional
}

// TokensHandler handles admin token management.
type TokensHandler struct {
	store  *auth.Store
	logger *zap.Logger
}

// NewTokensHandler creates a tokens handler.
func NewTokensHandler(store *auth.Store, logger *zap.Logger) *TokensHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokensHandler{store: store, logger: logger}
}

// List returns every issued token.
func (h *TokensHandler) List(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.store.List(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"tokens": tokens,
		"count":  len(tokens),
	})
}

// Issue creates a new token.
func (h *TokensHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	if req.Username == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, nil))
		return
	}

	now := time.Now().UTC()
	validFrom := now
	expiresAt := now.Add(defaultTokenValidity)

	if req.ValidFrom != "" {
		t, err := time.Parse("2006-01-02", req.ValidFrom)
		if err != nil {
			response.Error(w, http.StatusBadRequest,
				core.WrapError(core.ErrConfigInvalid, err))
			return
		}
		validFrom = t
	}
	if req.ExpiresAt != "" {
		t, err := time.Parse("2006-01-02", req.ExpiresAt)
		if err != nil {
			response.Error(w, http.StatusBadRequest,
				core.WrapError(core.ErrConfigInvalid, err))
			return
		}
		expiresAt = t
	}

	tokenType := req.Type
	if tokenType == "" {
		tokenType = auth.TypeUser
	}

	tok, err := h.store.Issue(r.Context(), req.Username, tokenType, validFrom, expiresAt)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrTokenInvalid) {
			status = http.StatusBadRequest
		}
		response.Error(w, status, err)
		return
	}

	h.logger.Info("token issued",
		zap.String("username", tok.Username),
		zap.String("type", tok.Type))
	response.JSON(w, http.StatusCreated, tok)
}

// Revoke removes a token by value.
func (h *TokensHandler) Revoke(w http.ResponseWriter, r *http.Request, value string) {
	if err := h.store.Revoke(r.Context(), value); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrTokenInvalid) {
			status = http.StatusNotFound
		}
		response.Error(w, status, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"revoked": value})
}
