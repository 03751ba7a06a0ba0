package feed

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// Endpoint pairs a cache key with its upstream URL
type Endpoint struct {
	Key string
	URL string
}

// Refresher keeps the feed cache warm so requests rarely pay for an upstream
// round trip. Entirely optional, the cache fills on demand without it.
type Refresher struct {
	Cache     *Cache
	Endpoints []Endpoint
	Interval  time.Duration
}

func (r *Refresher) Run(ctx context.Context) {
	interval := r.Interval
	if interval == 0 {
		interval = DefaultTTL
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.refreshAll(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Refresher) refreshAll(ctx context.Context) {
	p := pool.New().WithMaxGoroutines(len(r.Endpoints))

	for _, endpoint := range r.Endpoints {
		p.Go(func() {
			retry := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

			err := backoff.Retry(func() error {
				_, err := r.Cache.Fetch(ctx, endpoint.Key, endpoint.URL)
				return err
			}, retry)
			if err != nil {
				log.Warn().Err(err).Str("feed", endpoint.Key).Msg("Feed prefetch gave up")
			}
		})
	}

	p.Wait()
}
