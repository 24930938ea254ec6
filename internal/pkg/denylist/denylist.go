// Package denylist records revoked token identifiers in an expiring
// key/value store. Entries are volatile: a Redis restart without persistence
// silently un-revokes every token issued before it, so the backing instance
// should be configured to persist to disk.
package denylist

import (
	"context"
	"time"
)

const keyPrefix = "auth:denylist:"

// minTTL keeps an entry alive even when the token is already past expiry, so
// the revocation never outlives its marker.
const minTTL = time.Minute

// KV is the minimal expiring key/value surface the store needs.
type KV interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Store marks token identifiers revoked until their natural expiry.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store { return &Store{kv: kv} }

// Revoke records jti for ttl. Revoking twice refreshes the TTL and is
// otherwise a no-op. The ttl must cover the token's remaining lifetime;
// values at or below zero are clamped up to a one minute floor.
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl < minTTL {
		ttl = minTTL
	}
	return s.kv.Set(ctx, keyPrefix+jti, "", ttl)
}

// IsRevoked reports whether jti has an active denylist entry. Absence after
// the TTL elapsed reads as "not revoked", which is safe only because the TTL
// is at least the token's remaining lifetime.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.kv.Exists(ctx, keyPrefix+jti)
}
