package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"patchdeck/types"
)

// SummaryCache caches fleet summary responses for a short TTL so dashboard
// badges do not hammer the upstream API. Invalidate is wired to the
// coordinator's refresh notifier so a resolved batch shows up promptly.
type SummaryCache struct {
	service types.FleetService
	cache   *ristretto.Cache
	ttl     time.Duration
	key     string
}

// NewSummaryCache creates a cache in front of the given service
func NewSummaryCache(service types.FleetService, key string, ttl time.Duration) (*SummaryCache, error) {
	config := &ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
		Metrics:     true,
	}
	cache, err := ristretto.NewCache(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize summary cache: %w", err)
	}
	return &SummaryCache{
		service: service,
		cache:   cache,
		ttl:     ttl,
		key:     key,
	}, nil
}

// Summary returns the cached summary or fetches a fresh one
func (sc *SummaryCache) Summary(ctx context.Context) (types.Summary, error) {
	if cached, found := sc.cache.Get(sc.key); found {
		if summary, ok := cached.(types.Summary); ok {
			return summary, nil
		}
	}

	summary, err := sc.service.Summary(ctx)
	if err != nil {
		return types.Summary{}, err
	}

	sc.cache.SetWithTTL(sc.key, summary, 1, sc.ttl)
	sc.cache.Wait()
	return summary, nil
}

// Invalidate drops the cached summary so the next read refetches
func (sc *SummaryCache) Invalidate() {
	sc.cache.Del(sc.key)
}
