package main

import (
	"sync"
	"time"
)

// RateLimiter enforces a sliding one-hour submission window per anonymous
// token.
type RateLimiter struct {
	limits     map[string][]time.Time // token -> submission timestamps
	maxPerHour int
	mutex      sync.RWMutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(maxPerHour int) *RateLimiter {
	return &RateLimiter{
		limits:     make(map[string][]time.Time),
		maxPerHour: maxPerHour,
	}
}

// CheckAndRecordSubmission checks if the token is within its rate limit and
// records the submission when it is
func (rl *RateLimiter) CheckAndRecordSubmission(token string) (allowed bool, remaining int, resetTime time.Time) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	hourAgo := now.Add(-1 * time.Hour)
	resetTime = now.Add(1 * time.Hour)

	// Keep only submissions from the last hour
	filtered := []time.Time{}
	for _, ts := range rl.limits[token] {
		if ts.After(hourAgo) {
			filtered = append(filtered, ts)
		}
	}

	if len(filtered) >= rl.maxPerHour {
		// Window clears when the oldest submission ages out
		if len(filtered) > 0 {
			resetTime = filtered[0].Add(1 * time.Hour)
		}
		rl.limits[token] = filtered
		return false, 0, resetTime
	}

	filtered = append(filtered, now)
	rl.limits[token] = filtered

	remaining = rl.maxPerHour - len(filtered)
	return true, remaining, resetTime
}

// GetRemainingQuota returns how many submissions a token has left
func (rl *RateLimiter) GetRemainingQuota(token string) int {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	hourAgo := time.Now().Add(-1 * time.Hour)

	count := 0
	for _, ts := range rl.limits[token] {
		if ts.After(hourAgo) {
			count++
		}
	}

	remaining := rl.maxPerHour - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Reset clears all recorded submissions.
func (rl *RateLimiter) Reset() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.limits = make(map[string][]time.Time)
}

// StartCleanup prunes stale timestamps every interval until stop is closed.
func (rl *RateLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				rl.cleanupOldTimestamps()
			}
		}
	}()
}

func (rl *RateLimiter) cleanupOldTimestamps() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	hourAgo := time.Now().Add(-1 * time.Hour)
	for token, timestamps := range rl.limits {
		filtered := []time.Time{}
		for _, ts := range timestamps {
			if ts.After(hourAgo) {
				filtered = append(filtered, ts)
			}
		}

		if len(filtered) == 0 {
			delete(rl.limits, token)
		} else {
			rl.limits[token] = filtered
		}
	}
}
