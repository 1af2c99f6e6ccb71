package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(2*time.Second, 3)
	if limiter.defaultBurst != 3 {
		t.Errorf("expected burst 3, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(0, -1)
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for non-positive input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(10*time.Millisecond, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://example.com/foo"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different domain should also work
	if err := limiter.Wait(ctx, "http://other.com"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(time.Millisecond, 1)
	ctx := context.Background()

	start := time.Now()
	if err := limiter.WaitWithDelay(ctx, "http://example.com", 50*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}

	if d := time.Since(start); d < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", d)
	}
}

func TestLimiter_SharedAcrossStrategies(t *testing.T) {
	// One token per 2s and burst 1: the second immediate request to the
	// same host must be held no matter which strategy issues it.
	limiter := NewLimiter(2*time.Second, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://example.com/feed.xml"); err != nil {
		t.Fatalf("first request should pass: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(short, "http://example.com/sitemap.xml"); err == nil {
		t.Error("second request to same host should be held")
	}

	// Other hosts have their own bucket
	if err := limiter.Wait(ctx, "http://other.com"); err != nil {
		t.Errorf("other host should pass: %v", err)
	}
}

func TestLimiter_SetDomainRate(t *testing.T) {
	limiter := NewLimiter(time.Millisecond, 10)
	ctx := context.Background()

	limiter.SetDomainRate("slow.com", 10*time.Second, 1)

	if err := limiter.Wait(ctx, "http://slow.com"); err != nil {
		t.Fatalf("first request should pass: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(short, "http://slow.com"); err == nil {
		t.Error("second request should be held at the overridden rate")
	}
	if err := limiter.Wait(ctx, "http://fast.com"); err != nil {
		t.Errorf("other domain should pass: %v", err)
	}
}

func TestExtractDomain(t *testing.T) {
	domain, err := extractDomain("http://example.com/foo")
	if err != nil {
		t.Fatalf("extractDomain failed: %v", err)
	}
	if domain != "example.com" {
		t.Errorf("expected example.com, got %s", domain)
	}

	if _, err := extractDomain("::invalid"); err == nil {
		t.Error("expected error for invalid URL")
	}
}
