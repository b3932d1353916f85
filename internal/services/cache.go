package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invoice-system/internal/repositories"
	"invoice-system/pkg/constants"
)

// readThrough is cache-aside over JSON. Cache failures are logged and fall back to load.
type readThrough struct {
	cache  repositories.CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

// generation returns the invoice's cache generation. ok is false when it cannot be read;
// the caller then bypasses the cache for this request.
func (r readThrough) generation(ctx context.Context, invoiceID uuid.UUID) (gen int64, ok bool) {
	key := fmt.Sprintf(constants.CacheKeyInvoiceGeneration, invoiceID)
	raw, err := r.cache.Get(ctx, key)
	if errors.Is(err, repositories.ErrCacheMiss) {
		return 0, true
	}
	if err != nil {
		r.logger.Warn("cache generation read failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	gen, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.logger.Warn("cache generation is corrupt", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (r readThrough) get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		r.logger.Warn("cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r readThrough) set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, key, raw, r.ttl); err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
