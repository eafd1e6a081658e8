package api

import (
	"testing"
	"time"
)

func TestAttemptLimiterWindow(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter()
	key := "user-1"
	window := time.Hour
	now := time.Now().UTC()

	if !limiter.allow(key, now.Add(-2*time.Hour), 1, window) {
		t.Fatal("expected first attempt to be allowed")
	}
	if !limiter.allow(key, now, 1, window) {
		t.Fatal("expected old attempt to be pruned from active window")
	}
	if limiter.allow(key, now.Add(time.Minute), 1, window) {
		t.Fatal("expected second recent attempt to hit limit 1")
	}
	if !limiter.allow("user-2", now, 1, window) {
		t.Fatal("expected keys to be limited independently")
	}
	if !limiter.allow(key, now.Add(2*time.Hour), 1, window) {
		t.Fatal("expected attempt after window to be allowed")
	}
}
