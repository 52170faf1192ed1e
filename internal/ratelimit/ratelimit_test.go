package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestSetSharesLimiterPerHost(t *testing.T) {
	s := New(1000, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Wait(ctx, "https://example.com"); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	// Repeated lookups for the same host share one bucket.
	if s.limiterFor("https://example.com") != s.limiterFor("https://example.com") {
		t.Fatal("expected the same limiter instance per host")
	}
	if s.limiterFor("https://example.com") == s.limiterFor("https://other.com") {
		t.Fatal("expected distinct limiters across hosts")
	}
}

func TestHostOfNormalisesToSchemeAndHost(t *testing.T) {
	got := HostOf("https://example.com:8080/manifest.json?x=1")
	want := "https://example.com:8080"
	if got != want {
		t.Fatalf("HostOf = %q, want %q", got, want)
	}
}
