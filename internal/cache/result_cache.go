package cache

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
)

type resultCache struct {
	backend Backend
	logger  logger.ZapLogger
}

func NewResultCache(backend Backend, log logger.ZapLogger) ResultCache {
	return &resultCache{backend: backend, logger: log}
}

// GetOrCompute serves a live result whenever the backend misbehaves. Errors
// from compute are returned and never stored.
func (c *resultCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	val, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn("result cache read failed, computing live", zap.String("key", key), zap.Error(err))
	} else if ok {
		c.logger.Debug("result cache hit", zap.String("key", key))
		return val, nil
	}

	val, err = compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.backend.Set(ctx, key, val, ttl); err != nil {
		c.logger.Warn("result cache write failed", zap.String("key", key), zap.Error(err))
	}
	return val, nil
}
