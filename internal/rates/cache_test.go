package rates

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubProvider struct {
	rate  float64
	err   error
	calls int
}

func (s *stubProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	s.calls++
	return s.rate, s.err
}

func newCacheFixture(t *testing.T, src Provider, ttl time.Duration) (*CachedProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCachedProvider(src, rdb, ttl), mr
}

func TestCachedProviderMissThenHit(t *testing.T) {
	src := &stubProvider{rate: 12650.5}
	cp, _ := newCacheFixture(t, src, time.Minute)

	for i := 0; i < 3; i++ {
		rate, err := cp.Rate(context.Background(), "USD", "UZS")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rate != 12650.5 {
			t.Fatalf("rate = %v, want 12650.5", rate)
		}
	}
	if src.calls != 1 {
		t.Fatalf("source called %d times, want 1", src.calls)
	}
}

func TestCachedProviderExpiry(t *testing.T) {
	src := &stubProvider{rate: 100}
	cp, mr := newCacheFixture(t, src, time.Minute)

	if _, err := cp.Rate(context.Background(), "EUR", "UZS"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := cp.Rate(context.Background(), "EUR", "UZS"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("source called %d times, want 2", src.calls)
	}
}

func TestCachedProviderFallsThroughOnRedisFailure(t *testing.T) {
	src := &stubProvider{rate: 42}
	cp, mr := newCacheFixture(t, src, time.Minute)
	mr.Close()

	rate, err := cp.Rate(context.Background(), "USD", "UZS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 42 {
		t.Fatalf("rate = %v, want 42", rate)
	}
}

func TestCachedProviderDoesNotCacheFailures(t *testing.T) {
	src := &stubProvider{err: ErrNoRate}
	cp, _ := newCacheFixture(t, src, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cp.Rate(context.Background(), "ZZZ", "UZS"); err == nil {
			t.Fatal("expected error")
		}
	}
	if src.calls != 2 {
		t.Fatalf("source called %d times, want 2", src.calls)
	}
}
