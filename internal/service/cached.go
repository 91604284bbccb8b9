package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/merchant-crm/internal/cache"
)

// readThrough serves key from the view cache or loads and stores it. Cache
// failures are logged and fall back to load. A load that reports its result
// as not cacheable (a degraded enrichment) is returned without being stored.
func readThrough[T any](ctx context.Context, c cache.ViewCache, logger *zap.Logger, scope, key string, load func() (T, bool, error)) (T, error) {
	var hit T
	ok, err := c.Get(ctx, scope, key, &hit)
	if err != nil {
		logger.Warn("cache read failed", zap.String("scope", scope), zap.Error(err))
	}
	if ok {
		return hit, nil
	}

	value, cacheable, err := load()
	if err != nil {
		return value, err
	}
	if !cacheable {
		logger.Debug("skipping cache write for degraded view", zap.String("scope", scope))
		return value, nil
	}
	if err := c.Set(ctx, scope, key, value); err != nil {
		logger.Warn("cache write failed", zap.String("scope", scope), zap.Error(err))
	}
	return value, nil
}

func invalidate(ctx context.Context, c cache.ViewCache, logger *zap.Logger, scope string) {
	if err := c.Invalidate(ctx, scope); err != nil {
		logger.Warn("cache invalidation failed", zap.String("scope", scope), zap.Error(err))
	}
}
