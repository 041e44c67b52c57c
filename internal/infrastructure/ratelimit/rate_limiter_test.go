package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"furiousrepair/pkg/clock"
)

func TestAllowConsumesBurstThenRefills(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	rl := NewRateLimiter(map[string]Policy{ActionAuth: PerMinute(2)}, PerMinute(100), clk)

	ok, _ := rl.Allow("10.0.0.1", ActionAuth)
	assert.True(t, ok)
	ok, _ = rl.Allow("10.0.0.1", ActionAuth)
	assert.True(t, ok)

	ok, wait := rl.Allow("10.0.0.1", ActionAuth)
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, 30*time.Second)

	clk.Advance(30 * time.Second)
	ok, _ = rl.Allow("10.0.0.1", ActionAuth)
	assert.True(t, ok)
}

func TestAllowKeysBySubjectAndAction(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	rl := NewRateLimiter(map[string]Policy{ActionAuth: PerMinute(1)}, PerMinute(1), clk)

	ok, _ := rl.Allow("a", ActionAuth)
	assert.True(t, ok)
	ok, _ = rl.Allow("a", ActionAuth)
	assert.False(t, ok)

	ok, _ = rl.Allow("b", ActionAuth)
	assert.True(t, ok)
	ok, _ = rl.Allow("a", ActionSendMessage)
	assert.True(t, ok)
}

func TestNonPositiveLimitDisablesThrottling(t *testing.T) {
	rl := NewRateLimiter(map[string]Policy{ActionAuth: PerMinute(0)}, PerMinute(0), nil)
	for i := 0; i < 50; i++ {
		ok, _ := rl.Allow("a", ActionAuth)
		assert.True(t, ok)
	}
}

func TestCleanupDropsIdleSubjects(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	rl := NewRateLimiter(nil, PerMinute(5), clk)

	rl.Allow("a", ActionSendMessage)
	clk.Advance(2 * time.Hour)
	rl.Allow("b", ActionSendMessage)

	rl.Cleanup(time.Hour)
	assert.Equal(t, 1, rl.Size())
}
