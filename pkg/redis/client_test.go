package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values  map[string]string
	counts  map[string]int64
	expires map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:  map[string]string{},
		counts:  map[string]int64{},
		expires: map[string]time.Duration{},
	}
}

func (f *fakeStore) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = toString(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeStore) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := f.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if _, exists := f.values[key]; exists {
		cmd.SetVal(false)
		return cmd
	}
	f.values[key] = toString(value)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(f.counts[key])
	return cmd
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	removed := int64(0)
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
		delete(f.counts, key)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func TestFixedWindowAllow(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := client.FixedWindowAllow(ctx, "login:alice", 3, time.Minute)
		if err != nil {
			t.Fatalf("FixedWindowAllow returned error: %v", err)
		}
		if !allowed {
			t.Fatalf("expected attempt %d to be allowed", i+1)
		}
	}

	allowed, count, err := client.FixedWindowAllow(ctx, "login:alice", 3, time.Minute)
	if err != nil {
		t.Fatalf("FixedWindowAllow returned error: %v", err)
	}
	if allowed {
		t.Fatal("expected fourth attempt to be rejected")
	}
	if count != 4 {
		t.Fatalf("expected count 4, got %d", count)
	}
}

func TestFixedWindowAllowSetsTTLOnce(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}
	ctx := context.Background()

	if _, _, err := client.FixedWindowAllow(ctx, "login:ip", 10, time.Minute); err != nil {
		t.Fatalf("FixedWindowAllow returned error: %v", err)
	}
	key := client.RateLimitKey("login:ip")
	if store.expires[key] != time.Minute {
		t.Fatalf("expected TTL set on first increment, got %v", store.expires[key])
	}
}

func TestSetNXOnlyFirstWriterWins(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}
	ctx := context.Background()

	key := client.LockKey("ledger_reconcile")
	ok, err := client.SetNX(ctx, key, "worker-1", time.Minute)
	if err != nil {
		t.Fatalf("SetNX returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected first SetNX to win")
	}

	ok, err = client.SetNX(ctx, key, "worker-2", time.Minute)
	if err != nil {
		t.Fatalf("SetNX returned error: %v", err)
	}
	if ok {
		t.Fatal("expected second SetNX to lose")
	}
}

func TestBuildKeyNamespacing(t *testing.T) {
	client := &Client{}
	if got := client.RateLimitKey("login:alice"); got != "sr:rate_limit:login:alice" {
		t.Fatalf("unexpected rate limit key %q", got)
	}
	if got := client.LockKey("reconcile"); got != "sr:lock:reconcile" {
		t.Fatalf("unexpected lock key %q", got)
	}
	if got := client.CounterKey("requests"); got != "sr:counter:requests" {
		t.Fatalf("unexpected counter key %q", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	ctx := context.Background()

	if err := client.Set(ctx, "k", "v", 0); err == nil {
		t.Fatal("expected error from uninitialized Set")
	}
	if _, err := client.Get(ctx, "k"); err == nil {
		t.Fatal("expected error from uninitialized Get")
	}
	if _, err := client.SetNX(ctx, "k", "v", 0); err == nil {
		t.Fatal("expected error from uninitialized SetNX")
	}
}
