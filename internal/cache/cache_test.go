package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/sekaiwx/vissrview/internal/render"
	"github.com/sekaiwx/vissrview/internal/satellite"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

func testReq(hour int) satellite.Request {
	return satellite.Request{
		Satellite: satellite.GMS5,
		Time:      time.Date(1999, 6, 15, hour, 0, 0, 0, time.UTC),
	}
}

func testArtifact() *render.Artifact {
	return &render.Artifact{Width: 1, Height: 1, DPI: 300}
}

// TestStoreThenLookup checks the basic hit path.
func TestStoreThenLookup(t *testing.T) {
	clock := &fakeClock{cur: time.Unix(1000, 0)}
	c := New(time.Hour, clock.Now)

	req := testReq(12)
	art := testArtifact()
	c.Store(req, art)

	got, ok := c.Lookup(req)
	if !ok {
		t.Fatal("expected hit")
	}
	if got != art {
		t.Fatal("lookup returned a different artifact")
	}
}

// TestLookupMissesAfterTTL checks expiry and lazy eviction.
func TestLookupMissesAfterTTL(t *testing.T) {
	clock := &fakeClock{cur: time.Unix(1000, 0)}
	c := New(time.Hour, clock.Now)

	req := testReq(12)
	c.Store(req, testArtifact())

	clock.Advance(59 * time.Minute)
	if _, ok := c.Lookup(req); !ok {
		t.Fatal("entry expired early")
	}

	clock.Advance(time.Minute)
	if _, ok := c.Lookup(req); ok {
		t.Fatal("expected miss after TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not evicted; len = %d", c.Len())
	}
}

// TestStoreReplaces checks that at most one entry per key is live.
func TestStoreReplaces(t *testing.T) {
	clock := &fakeClock{cur: time.Unix(1000, 0)}
	c := New(time.Hour, clock.Now)

	req := testReq(12)
	first := testArtifact()
	second := testArtifact()
	c.Store(req, first)
	c.Store(req, second)

	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
	got, _ := c.Lookup(req)
	if got != second {
		t.Fatal("replacement did not win")
	}
}

// TestSweep checks bulk eviction of expired entries only.
func TestSweep(t *testing.T) {
	clock := &fakeClock{cur: time.Unix(1000, 0)}
	c := New(time.Hour, clock.Now)

	c.Store(testReq(1), testArtifact())
	clock.Advance(45 * time.Minute)
	c.Store(testReq(2), testArtifact())
	clock.Advance(30 * time.Minute) // first is now 75m old, second 30m

	if dropped := c.Sweep(); dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if _, ok := c.Lookup(testReq(2)); !ok {
		t.Fatal("fresh entry swept")
	}
}

// TestInvalidate checks explicit removal.
func TestInvalidate(t *testing.T) {
	c := New(time.Hour, nil)
	req := testReq(3)
	c.Store(req, testArtifact())
	c.Invalidate(req)
	if _, ok := c.Lookup(req); ok {
		t.Fatal("entry survived invalidation")
	}
}

// TestZeroTTLNeverExpires checks that a zero TTL disables expiry.
func TestZeroTTLNeverExpires(t *testing.T) {
	clock := &fakeClock{cur: time.Unix(1000, 0)}
	c := New(0, clock.Now)
	req := testReq(4)
	c.Store(req, testArtifact())
	clock.Advance(1000 * time.Hour)
	if _, ok := c.Lookup(req); !ok {
		t.Fatal("entry with zero TTL expired")
	}
}

// TestConcurrentAccess exercises the cache under parallel readers and
// writers; the race detector is the real assertion here.
func TestConcurrentAccess(t *testing.T) {
	c := New(time.Hour, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(hour int) {
			defer wg.Done()
			req := testReq(hour)
			for j := 0; j < 100; j++ {
				c.Store(req, testArtifact())
				c.Lookup(req)
				c.Sweep()
			}
		}(i)
	}
	wg.Wait()
}
