package worker

import (
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5, time.Minute)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}
	if limiter.idleTTL != time.Minute {
		t.Errorf("expected idle ttl 1m, got %s", limiter.idleTTL)
	}

	l2 := NewLimiter(10, -1, 0)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
	if l2.idleTTL != DefaultIdleTTL {
		t.Errorf("expected default idle ttl, got %s", l2.idleTTL)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1, time.Minute)

	if !limiter.Allow("10.0.0.1") {
		t.Errorf("first request should pass")
	}

	// Burst 1 means the token is consumed
	if limiter.Allow("10.0.0.1") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	if !limiter.Allow("10.0.0.2") {
		t.Errorf("expected allow for other client")
	}

	if limiter.Clients() != 2 {
		t.Errorf("expected 2 clients, got %d", limiter.Clients())
	}
}

func TestLimiter_EvictsIdleClients(t *testing.T) {
	limiter := NewLimiter(0.001, 1, 30*time.Millisecond)

	for _, client := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		if !limiter.Allow(client) {
			t.Fatalf("first request from %s should pass", client)
		}
	}
	if limiter.Clients() != 3 {
		t.Fatalf("expected 3 clients, got %d", limiter.Clients())
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("expected exhausted bucket")
	}

	time.Sleep(80 * time.Millisecond)

	if got := limiter.Clients(); got != 0 {
		t.Errorf("expected idle clients to be evicted, got %d", got)
	}
	// A returning client starts with a fresh burst
	if !limiter.Allow("10.0.0.1") {
		t.Errorf("expected fresh bucket after eviction")
	}
}

func TestLimiter_ActiveClientKeepsBucket(t *testing.T) {
	limiter := NewLimiter(0.001, 1, 200*time.Millisecond)

	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("first request should pass")
	}
	// Each denied request refreshes the idle deadline
	for i := 0; i < 3; i++ {
		time.Sleep(50 * time.Millisecond)
		if limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d should stay limited", i+2)
		}
	}
	if limiter.Clients() != 1 {
		t.Errorf("expected 1 client, got %d", limiter.Clients())
	}
}
