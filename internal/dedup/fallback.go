package dedup

import (
	"context"

	"github.com/ghostkyle24/bonusmarmitas/internal/pkg/logger"
)

// FallbackStore tries the durable backend first and silently degrades a
// failing call to the in-process store. Best effort by design: the two
// backends are never reconciled, a failed durable call is not retried,
// and durable errors never reach the caller. Keeping the submission flow
// available beats strict consistency here.
type FallbackStore struct {
	durable  Store
	fallback Store
}

// NewFallbackStore composes a durable store with an in-process fallback.
func NewFallbackStore(durable, fallback Store) *FallbackStore {
	return &FallbackStore{durable: durable, fallback: fallback}
}

// IsUsed checks the durable store, degrading to the fallback on any error.
func (f *FallbackStore) IsUsed(ctx context.Context, key string) (bool, error) {
	used, err := f.durable.IsUsed(ctx, key)
	if err == nil {
		return used, nil
	}
	logger.Warn("dedup store degraded, using in-process fallback", "op", "is_used", "error", err.Error())
	return f.fallback.IsUsed(ctx, key)
}

// MarkUsed writes to the durable store, degrading to the fallback on any error.
func (f *FallbackStore) MarkUsed(ctx context.Context, key string) error {
	if err := f.durable.MarkUsed(ctx, key); err != nil {
		logger.Warn("dedup store degraded, using in-process fallback", "op", "mark_used", "error", err.Error())
		return f.fallback.MarkUsed(ctx, key)
	}
	return nil
}
