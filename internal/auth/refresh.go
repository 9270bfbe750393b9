package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/proelevate/backend/internal/apperror"
	"github.com/proelevate/backend/internal/cache"
)

// storedToken is the shape of the refresh-token record kept in the token
// store, keyed by user ID.
type storedToken struct {
	Token string `json:"token"`
}

// refreshKeyPrefix namespaces refresh-token keys. The same store also holds
// user snapshots keyed by bare user ID, so the prefix keeps a session
// record from ever shadowing a cached profile.
const refreshKeyPrefix = "refresh:"

// RefreshVerifier checks refresh tokens against the server-side store.
//
// A refresh token is only accepted when it both verifies cryptographically
// AND matches the copy stored under its subject. Deleting the stored copy
// is how a session gets revoked — the JWT alone is not enough.
type RefreshVerifier struct {
	tokens *TokenService
	store  cache.Cache
}

// NewRefreshVerifier creates a RefreshVerifier backed by the given store.
func NewRefreshVerifier(tokens *TokenService, store cache.Cache) *RefreshVerifier {
	return &RefreshVerifier{tokens: tokens, store: store}
}

// Verify validates tokenStr and confirms it is the currently-stored refresh
// token for its subject. Returns the userID on success.
func (v *RefreshVerifier) Verify(ctx context.Context, tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", apperror.Unauthorized("Invalid refresh token")
	}

	userID, err := v.tokens.Validate(tokenStr)
	if err != nil {
		return "", apperror.Unauthorized("Error in verifying refresh token")
	}

	raw, err := v.store.Get(ctx, refreshKeyPrefix+userID)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return "", apperror.Unauthorized("Invalid request. Token is not in store.")
		}
		return "", fmt.Errorf("auth: reading stored token for %s: %w", userID, err)
	}

	var stored storedToken
	if err := json.Unmarshal(raw, &stored); err != nil {
		return "", fmt.Errorf("auth: decoding stored token for %s: %w", userID, err)
	}

	if stored.Token != tokenStr {
		return "", apperror.Unauthorized("Invalid request token, token is not same in store")
	}

	return userID, nil
}

// Store records tokenStr as the current refresh token for userID,
// replacing any previous session.
func (v *RefreshVerifier) Store(ctx context.Context, userID, tokenStr string) error {
	payload, err := json.Marshal(storedToken{Token: tokenStr})
	if err != nil {
		return fmt.Errorf("auth: encoding token for %s: %w", userID, err)
	}
	if err := v.store.Set(ctx, refreshKeyPrefix+userID, payload, RefreshTokenTTL); err != nil {
		return fmt.Errorf("auth: storing token for %s: %w", userID, err)
	}
	return nil
}
