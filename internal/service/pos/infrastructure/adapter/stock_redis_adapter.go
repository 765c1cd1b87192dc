package adapter

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	pkgredis "till/internal/pkg/redis"
)

const stockKeyPrefix = "pos:stock:"

// StockRedisAdapter implements port.StockMirror on Redis. Each product's
// available quantity lives under pos:stock:<id> for external read-side
// consumers; the engine itself never reads these keys back.
type StockRedisAdapter struct {
	redisClient *pkgredis.Client
}

func NewStockRedisAdapter(redisClient *pkgredis.Client) *StockRedisAdapter {
	return &StockRedisAdapter{redisClient: redisClient}
}

func (a *StockRedisAdapter) PublishAvailable(ctx context.Context, productID string, available int64) error {
	key := stockKey(productID)
	if err := a.redisClient.GetClient().Set(ctx, key, available, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to publish stock for %s", productID)
	}
	return nil
}

func (a *StockRedisAdapter) Forget(ctx context.Context, productID string) error {
	if err := a.redisClient.GetClient().Del(ctx, stockKey(productID)).Err(); err != nil {
		return errors.Wrapf(err, "failed to drop stock key for %s", productID)
	}
	return nil
}

func stockKey(productID string) string {
	return fmt.Sprintf("%s%s", stockKeyPrefix, productID)
}
