package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeDownloader struct {
	mu      sync.Mutex
	calls   int
	payload []byte
	err     error
}

func (f *fakeDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func (f *fakeDownloader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestCache(d Getter) (*Cache, *time.Time) {
	c := NewCache(d)
	clock := time.Date(2025, 8, 1, 7, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestGetOrFetchWithinTTL(t *testing.T) {
	dl := &fakeDownloader{payload: []byte("v1")}
	c, clock := newTestCache(dl)
	ctx := context.Background()

	if _, outcome, _, err := c.GetOrFetch(ctx, "production", "u", time.Minute, false); err != nil || outcome != OutcomeFresh {
		t.Fatalf("first call: outcome=%v err=%v", outcome, err)
	}

	*clock = clock.Add(30 * time.Second)
	payload, outcome, _, err := c.GetOrFetch(ctx, "production", "u", time.Minute, false)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if outcome != OutcomeCached || string(payload) != "v1" {
		t.Fatalf("second call: outcome=%v payload=%q", outcome, payload)
	}
	if got := dl.callCount(); got != 1 {
		t.Fatalf("downloads within TTL = %d, want 1", got)
	}
}

func TestGetOrFetchAfterTTL(t *testing.T) {
	dl := &fakeDownloader{payload: []byte("v1")}
	c, clock := newTestCache(dl)
	ctx := context.Background()

	if _, _, _, err := c.GetOrFetch(ctx, "production", "u", time.Minute, false); err != nil {
		t.Fatal(err)
	}

	*clock = clock.Add(2 * time.Minute)
	dl.payload = []byte("v2")
	payload, outcome, _, err := c.GetOrFetch(ctx, "production", "u", time.Minute, false)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeFresh || string(payload) != "v2" {
		t.Fatalf("expired entry not refreshed: outcome=%v payload=%q", outcome, payload)
	}
	if got := dl.callCount(); got != 2 {
		t.Fatalf("downloads = %d, want 2", got)
	}
}

func TestGetOrFetchForceRefresh(t *testing.T) {
	dl := &fakeDownloader{payload: []byte("v1")}
	c, _ := newTestCache(dl)
	ctx := context.Background()

	if _, _, _, err := c.GetOrFetch(ctx, "production", "u", time.Hour, false); err != nil {
		t.Fatal(err)
	}
	if _, outcome, _, err := c.GetOrFetch(ctx, "production", "u", time.Hour, true); err != nil || outcome != OutcomeFresh {
		t.Fatalf("forced refresh: outcome=%v err=%v", outcome, err)
	}
	if got := dl.callCount(); got != 2 {
		t.Fatalf("downloads = %d, want 2", got)
	}
}

func TestGetOrFetchStaleOnError(t *testing.T) {
	dl := &fakeDownloader{payload: []byte("v1")}
	c, clock := newTestCache(dl)
	ctx := context.Background()

	if _, _, _, err := c.GetOrFetch(ctx, "production", "u", time.Minute, false); err != nil {
		t.Fatal(err)
	}

	*clock = clock.Add(2 * time.Minute)
	dl.err = errors.New("remote outage")
	payload, outcome, fetchedAt, err := c.GetOrFetch(ctx, "production", "u", time.Minute, false)
	if err == nil {
		t.Fatal("fetch failure must surface the error")
	}
	if outcome != OutcomeStale {
		t.Fatalf("outcome = %v, want OutcomeStale", outcome)
	}
	if string(payload) != "v1" {
		t.Fatalf("stale payload = %q, want retained v1", payload)
	}
	if fetchedAt.IsZero() {
		t.Fatal("stale response should keep the original fetch timestamp")
	}

	// The stale entry must survive for the next cycle too.
	payload, outcome, _, err = c.GetOrFetch(ctx, "production", "u", time.Minute, false)
	if err == nil || outcome != OutcomeStale || string(payload) != "v1" {
		t.Fatalf("entry evicted after failure: outcome=%v payload=%q err=%v", outcome, payload, err)
	}
}

func TestGetOrFetchErrorWithoutCache(t *testing.T) {
	dl := &fakeDownloader{err: errors.New("remote outage")}
	c, _ := newTestCache(dl)

	payload, _, _, err := c.GetOrFetch(context.Background(), "production", "u", time.Minute, false)
	if err == nil {
		t.Fatal("expected error")
	}
	if payload != nil {
		t.Fatalf("payload = %q, want nil with no prior entry", payload)
	}
}

func TestGetOrFetchSharedAcrossGoroutines(t *testing.T) {
	dl := &fakeDownloader{payload: []byte("v1")}
	c := NewCache(dl)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, _, err := c.GetOrFetch(ctx, "production", "u", time.Hour, false); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := dl.callCount(); got != 1 {
		t.Fatalf("concurrent callers issued %d downloads, want 1", got)
	}
}
