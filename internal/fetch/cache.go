package fetch

import (
	"context"
	"sync"
	"time"
)

// Outcome tags how a payload was obtained, replacing the old convention of
// threading best-effort/strict booleans through the call chain. Callers
// branch on the tag instead of an exception-vs-return distinction.
type Outcome int

const (
	// OutcomeFresh means a network fetch succeeded and refreshed the entry.
	OutcomeFresh Outcome = iota
	// OutcomeCached means the entry was served inside its TTL, no network call.
	OutcomeCached
	// OutcomeStale means the fetch failed and the previous payload was served.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFresh:
		return "fresh"
	case OutcomeCached:
		return "cached"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Getter is the download dependency of the cache.
type Getter interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type entry struct {
	mu        sync.Mutex
	payload   []byte
	fetchedAt time.Time
}

// Cache is the process-wide workbook cache, keyed by document type. Entries
// are replaced on TTL expiry or forced refresh, never evicted; a failed fetch
// retains and serves the previous payload so a transient outage does not
// blank the dashboard. The cache lives for the process lifetime.
type Cache struct {
	downloader Getter

	mu      sync.Mutex
	entries map[string]*entry

	now func() time.Time
}

// NewCache creates a Cache backed by the given downloader.
func NewCache(d Getter) *Cache {
	return &Cache{
		downloader: d,
		entries:    make(map[string]*entry),
		now:        time.Now,
	}
}

// GetOrFetch returns the payload for key, fetching url when the entry is
// absent, older than ttl, or force is set. The per-key lock serializes the
// check-then-fetch sequence: concurrent callers for the same key within the
// TTL window share one download instead of racing the remote host.
//
// On fetch failure with a prior payload available, that payload is returned
// with OutcomeStale alongside the error; callers doing a routine sync can use
// the stale bytes, callers that forced a refresh must treat the error as the
// refresh not having happened.
func (c *Cache) GetOrFetch(ctx context.Context, key, url string, ttl time.Duration, force bool) ([]byte, Outcome, time.Time, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !force && e.payload != nil && c.now().Sub(e.fetchedAt) < ttl {
		cacheHits.WithLabelValues(key).Inc()
		return e.payload, OutcomeCached, e.fetchedAt, nil
	}

	cacheMisses.WithLabelValues(key).Inc()
	start := c.now()
	payload, err := c.downloader.Download(ctx, url)
	fetchDuration.WithLabelValues(key).Observe(c.now().Sub(start).Seconds())

	if err != nil {
		if e.payload != nil {
			staleServed.WithLabelValues(key).Inc()
			return e.payload, OutcomeStale, e.fetchedAt, err
		}
		return nil, OutcomeStale, time.Time{}, err
	}

	e.payload = payload
	e.fetchedAt = c.now()
	return e.payload, OutcomeFresh, e.fetchedAt, nil
}
