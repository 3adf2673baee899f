package repositories

import (
	"context"
	"time"
)

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	// Incr атомарно увеличивает счетчик; отсутствующий ключ считается нулем.
	Incr(ctx context.Context, key string) (int64, error)
}
