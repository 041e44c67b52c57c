package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"furiousrepair/pkg/clock"
)

const (
	ActionAuth        = "auth"
	ActionSendMessage = "send_message"
)

// Policy is a token bucket: Burst tokens, refilled at Limit per second.
type Policy struct {
	Limit rate.Limit
	Burst int
}

// PerMinute allows n events per minute with a burst of n.
func PerMinute(n int) Policy {
	if n <= 0 {
		return Policy{Limit: rate.Inf}
	}
	return Policy{Limit: rate.Every(time.Minute / time.Duration(n)), Burst: n}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per subject and action.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	policies map[string]Policy
	fallback Policy
	clock    clock.Clock
}

func NewRateLimiter(policies map[string]Policy, fallback Policy, clk clock.Clock) *RateLimiter {
	if clk == nil {
		clk = clock.Real()
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		policies: policies,
		fallback: fallback,
		clock:    clk,
	}
}

// Allow consumes a token for subject's action. When none is available it
// reports how long until the next one.
func (rl *RateLimiter) Allow(subject, action string) (bool, time.Duration) {
	now := rl.clock.Now()
	key := subject + ":" + action

	rl.mu.Lock()
	v, exists := rl.visitors[key]
	if !exists {
		policy, ok := rl.policies[action]
		if !ok {
			policy = rl.fallback
		}
		v = &visitor{limiter: rate.NewLimiter(policy.Limit, policy.Burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	reservation := v.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, 0
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup forgets subjects idle for longer than idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) {
	now := rl.clock.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > idle {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// StartCleanupRoutine runs Cleanup every interval until ctx is done.
func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context, interval, idle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup(idle)
			}
		}
	}()
}
