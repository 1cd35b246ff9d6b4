package cache

import (
	"context"
	"time"

	"github.com/matzehuels/clusterflow/pkg/observability"
)

// Instrument wraps c so every Get and Set is reported to the global cache
// hooks.
func Instrument(c Cache) Cache {
	if _, ok := c.(*instrumented); ok {
		return c
	}
	return &instrumented{Cache: c}
}

type instrumented struct {
	Cache
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil && hit {
		observability.Cache().OnCacheHit(ctx, key)
	} else {
		observability.Cache().OnCacheMiss(ctx, key)
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, key, len(data))
	}
	return err
}
