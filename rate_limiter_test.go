package main

import "testing"

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(3)

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := rl.CheckAndRecordSubmission("anon_a")
		if !allowed {
			t.Fatalf("submission %d should be allowed", i+1)
		}
		if remaining != 3-(i+1) {
			t.Fatalf("submission %d: remaining %d", i+1, remaining)
		}
	}

	allowed, remaining, reset := rl.CheckAndRecordSubmission("anon_a")
	if allowed {
		t.Fatalf("fourth submission should be blocked")
	}
	if remaining != 0 {
		t.Fatalf("blocked caller should have 0 remaining, got %d", remaining)
	}
	if reset.IsZero() {
		t.Fatalf("blocked caller should get a reset time")
	}
}

func TestRateLimiterPerToken(t *testing.T) {
	rl := NewRateLimiter(1)

	rl.CheckAndRecordSubmission("anon_a")
	allowed, _, _ := rl.CheckAndRecordSubmission("anon_b")
	if !allowed {
		t.Fatalf("tokens must not share quotas")
	}
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(1)
	rl.CheckAndRecordSubmission("anon_a")

	rl.Reset()

	if got := rl.GetRemainingQuota("anon_a"); got != 1 {
		t.Fatalf("reset should restore quota, got %d", got)
	}
	allowed, _, _ := rl.CheckAndRecordSubmission("anon_a")
	if !allowed {
		t.Fatalf("submission after reset should be allowed")
	}
}
