// Package dedup implements the duplicate-submission gate: at most one
// accepted submission per client IP and per email identity within a
// retention window.
//
// Two interchangeable backends implement Store: a Redis-backed durable
// store and an in-process map with lazy expiry. FallbackStore composes
// them with a catch-and-degrade policy so a degraded Redis never takes
// the submission flow down with it.
package dedup

import "context"

// Store is the key/expiry abstraction the gate runs on. A key being
// "used" means an accepted submission already consumed it within the
// retention window.
type Store interface {
	// IsUsed reports whether an unexpired record exists for key.
	IsUsed(ctx context.Context, key string) (bool, error)

	// MarkUsed records key with a fresh timestamp and the retention
	// window. Idempotent: repeated marks refresh the window, never error.
	MarkUsed(ctx context.Context, key string) error
}

// IPKey builds the dedup key for a client network address.
func IPKey(ip string) string {
	return "ip:" + ip
}

// EmailKey builds the dedup key for a hashed email identity. The hash is
// the canonicalized SHA-256 digest, never the raw address.
func EmailKey(emailHash string) string {
	return "email:" + emailHash
}
