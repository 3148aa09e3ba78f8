// Package storage persists the few values the client keeps on the device,
// chiefly the bearer token under a fixed key.
package storage

import (
	"context"
	"errors"
)

// TokenKey is the fixed key the bearer token is stored under.
const TokenKey = "token"

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// KV is a small device-local key/value store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// TokenStore reads and writes the bearer token on top of any KV.
type TokenStore struct {
	kv KV
}

func NewTokenStore(kv KV) *TokenStore {
	return &TokenStore{kv: kv}
}

// Token returns the stored token, or "" when none is stored. A token sealed
// under a different key reads as absent.
func (s *TokenStore) Token(ctx context.Context) (string, error) {
	b, err := s.kv.Get(ctx, TokenKey)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnseal) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearToken(ctx)
	}
	return s.kv.Set(ctx, TokenKey, []byte(token))
}

// ClearToken removes the token. Clearing an absent token is not an error.
func (s *TokenStore) ClearToken(ctx context.Context) error {
	return s.kv.Delete(ctx, TokenKey)
}
