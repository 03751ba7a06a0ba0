package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/coastbus/coastbus/pkg/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"google.golang.org/protobuf/proto"
)

// ErrUpstreamUnavailable wraps every upstream fetch or decode failure.
// Realtime data is best effort, callers degrade to static-only output.
var ErrUpstreamUnavailable = errors.New("realtime upstream unavailable")

// Feed keys for the two upstream endpoints
const (
	KeyTripUpdates      = "tripupdates"
	KeyVehiclePositions = "vehiclepositions"
)

const DefaultTTL = 15 * time.Second

// Clock supplies the current instant. Injected so tests can expire entries
// without waiting out the TTL.
type Clock func() time.Time

type entry struct {
	payload   *gtfs.FeedMessage
	fetchedAt time.Time
}

// Cache holds the most recently decoded payload per upstream feed. Entries
// are replaced wholesale on expiry and a failed refetch leaves the previous
// entry untouched.
type Cache struct {
	ttl    time.Duration
	clock  Clock
	client *http.Client

	group singleflight.Group

	mutex   sync.Mutex
	entries map[string]entry
}

func NewCache(ttl time.Duration, clock Clock, client *http.Client) *Cache {
	if clock == nil {
		clock = time.Now
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Cache{
		ttl:     ttl,
		clock:   clock,
		client:  client,
		entries: map[string]entry{},
	}
}

// Fetch returns the decoded payload for a feed, refetching from upstream when
// the cached entry is older than the TTL. Concurrent misses for the same key
// are collapsed into a single upstream request.
func (c *Cache) Fetch(ctx context.Context, key string, url string) (*gtfs.FeedMessage, error) {
	if payload, ok := c.fresh(key); ok {
		metrics.FeedCacheHits.WithLabelValues(key).Inc()
		return payload, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have refilled the entry while this one
		// waited on the flight
		if payload, ok := c.fresh(key); ok {
			return payload, nil
		}

		metrics.FeedCacheMisses.WithLabelValues(key).Inc()

		payload, err := c.fetchUpstream(ctx, url)
		if err != nil {
			return nil, err
		}

		c.mutex.Lock()
		c.entries[key] = entry{payload: payload, fetchedAt: c.clock()}
		c.mutex.Unlock()

		return payload, nil
	})
	if err != nil {
		metrics.FeedFetchErrors.WithLabelValues(key).Inc()
		log.Error().Err(err).Str("feed", key).Msg("Failed to refresh realtime feed")

		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	return result.(*gtfs.FeedMessage), nil
}

func (c *Cache) fresh(key string) (*gtfs.FeedMessage, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cached, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if c.clock().Sub(cached.fetchedAt) >= c.ttl {
		return nil, false
	}

	return cached.payload, true
}

func (c *Cache) fetchUpstream(ctx context.Context, url string) (*gtfs.FeedMessage, error) {
	request, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned HTTP %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	feedMessage := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feedMessage); err != nil {
		return nil, fmt.Errorf("failed parsing GTFS-RT protobuf: %s", err)
	}

	return feedMessage, nil
}
