package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterAllowAndReset(t *testing.T) {
	l := New(2, time.Minute)

	if !l.Allow("k") || !l.Allow("k") {
		t.Fatal("expected first two requests to pass")
	}
	if l.Allow("k") {
		t.Fatal("expected third request to be limited")
	}
	if !l.Allow("other") {
		t.Fatal("expected an unrelated key to pass")
	}

	l.Reset("k")
	if !l.Allow("k") {
		t.Fatal("expected request to pass after reset")
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")

	if got := ClientIP(r); got != "203.0.113.9" {
		t.Fatalf("ClientIP = %q, want 203.0.113.9", got)
	}

	r.Header.Del("X-Forwarded-For")
	if got := ClientIP(r); got != "10.0.0.1" {
		t.Fatalf("ClientIP = %q, want 10.0.0.1", got)
	}
}

func TestLoginLimiterCanonicalizesEmailKeys(t *testing.T) {
	ll := &LoginLimiter{
		ipLimiter:    New(100, time.Minute),
		emailLimiter: New(2, time.Minute),
	}

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "192.0.2.1:1000"

	// Dot variants of one Gmail account share a window.
	variants := []string{"asha.rao@gmail.com", "a.sharao@gmail.com", "a.sha.rao@gmail.com"}
	for i, email := range variants {
		allowed, _ := ll.Check(r, email)
		if i < 2 && !allowed {
			t.Fatalf("attempt %d for %q unexpectedly limited", i, email)
		}
		if i == 2 && allowed {
			t.Fatalf("attempt %d for %q should have been limited", i, email)
		}
	}

	ll.ResetEmail("Asha.Rao@gmail.com")
	if allowed, _ := ll.Check(r, "asharao@gmail.com"); !allowed {
		t.Fatal("expected attempt to pass after reset")
	}
}
