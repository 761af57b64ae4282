package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDomainLimiter_AllowWithinBurst(t *testing.T) {
	limiter := NewDomainLimiter(1.0, 2)

	if !limiter.Allow("https://example.com/a") {
		t.Error("Expected the first request to pass")
	}
	if !limiter.Allow("https://example.com/b") {
		t.Error("Expected the second request to fit in the burst")
	}
	if limiter.Allow("https://example.com/c") {
		t.Error("Expected the third request to be throttled")
	}
}

func TestDomainLimiter_PerDomainIsolation(t *testing.T) {
	limiter := NewDomainLimiter(1.0, 1)

	if !limiter.Allow("https://a.example.com/") {
		t.Error("Expected the first domain to pass")
	}
	if !limiter.Allow("https://b.example.com/") {
		t.Error("Expected a different domain to have its own bucket")
	}
	if limiter.Allow("https://a.example.com/again") {
		t.Error("Expected the first domain to be exhausted")
	}
}

func TestDomainLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewDomainLimiter(0.001, 1)
	limiter.Allow("https://example.com/")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "https://example.com/"); err == nil {
		t.Error("Expected Wait to fail once the context expired")
	}
}

func TestDomainLimiter_InvalidURLPasses(t *testing.T) {
	limiter := NewDomainLimiter(1.0, 1)

	if err := limiter.Wait(context.Background(), "not a url"); err != nil {
		t.Errorf("Expected unparsable URLs to pass through, got %v", err)
	}
	if !limiter.Allow("not a url") {
		t.Error("Expected Allow to pass unparsable URLs through")
	}
}

func TestNewDomainLimiter_Defaults(t *testing.T) {
	limiter := NewDomainLimiter(0, 0)

	if limiter.perHost != 5.0 {
		t.Errorf("Expected default rate 5.0, got %v", limiter.perHost)
	}
	if limiter.burst != 10 {
		t.Errorf("Expected default burst 10, got %d", limiter.burst)
	}
}
