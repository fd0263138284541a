package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed on first request")
	}
	if count != 1 {
		t.Fatalf("expected counter 1 got %d", count)
	}
	if got := mock.ttls["mtaani:rate_limit:test-scope"]; got != time.Second.Milliseconds() {
		t.Fatalf("expected window set on first increment, got %d", got)
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if mock.expireCalls != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestSetNXAndDel(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	key := client.LockKey("assignment-expiry")
	ok, err := client.SetNX(ctx, key, "owner-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to win, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, key, "owner-b", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to lose, ok=%v err=%v", ok, err)
	}
	owner, err := client.Get(ctx, key)
	if err != nil || owner != "owner-a" {
		t.Fatalf("expected owner-a, got %q err=%v", owner, err)
	}

	deleted, err := client.DelIfValue(ctx, key, "owner-b")
	if err != nil || deleted {
		t.Fatalf("non-owner must not delete, deleted=%v err=%v", deleted, err)
	}
	deleted, err = client.DelIfValue(ctx, key, "owner-a")
	if err != nil || !deleted {
		t.Fatalf("owner delete failed, deleted=%v err=%v", deleted, err)
	}
	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); err != redis.Nil {
		t.Fatalf("expected redis.Nil after del, got %v", err)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping on empty client to fail")
	}
	if _, _, err := client.FixedWindowAllow(context.Background(), "scope", 1, time.Second); err == nil {
		t.Fatal("expected rate limit on empty client to fail")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on empty client should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "mtaani:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.RateLimitKey("claim:dealer-1"); got != "mtaani:rate_limit:claim:dealer-1" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.LockKey("outbox-retention"); got != "mtaani:lock:outbox-retention" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.IdempotencyKey("scope", ""); got != "mtaani:idempotency:scope" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

// mockCmdable interprets the two scripts the client runs.
type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	ttls        map[string]int64
	expireCalls int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
		ttls: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	key := keys[0]
	switch script {
	case fixedWindowScript:
		m.incr[key]++
		if m.incr[key] == 1 {
			m.expireCalls++
			m.ttls[key] = args[0].(int64)
		}
		return redis.NewCmdResult(m.incr[key], nil)
	case compareAndDeleteScript:
		if v, ok := m.data[key]; ok && v == args[0] {
			delete(m.data, key)
			return redis.NewCmdResult(int64(1), nil)
		}
		return redis.NewCmdResult(int64(0), nil)
	}
	return redis.NewCmdResult(nil, fmt.Errorf("unexpected script"))
}
