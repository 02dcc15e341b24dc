package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/storetest"
)

// TestLimiter_SixthWaitlistRequestIsRejected follows the §8 fixture: the 6th
// waitlist subscribe from the same IP within 60s returns 429.
func TestLimiter_SixthWaitlistRequestIsRejected(t *testing.T) {
	mem := storetest.NewMemStore()
	limiter := New(mem)
	ctx := context.Background()

	var last Result

	for i := 0; i < 6; i++ {
		result, err := limiter.Allow(ctx, "ip", "1.2.3.4", WaitlistPerIP)
		require.NoError(t, err)
		last = result
	}

	assert.False(t, last.Allowed)
	assert.Equal(t, 0, last.Remaining)
}

func TestLimiter_AllowsUpToMax(t *testing.T) {
	mem := storetest.NewMemStore()
	limiter := New(mem)
	ctx := context.Background()

	for i := 0; i < WaitlistPerIP.Max; i++ {
		result, err := limiter.Allow(ctx, "ip", "5.6.7.8", WaitlistPerIP)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}

func TestLoginLockout_LocksAfterThreshold(t *testing.T) {
	mem := storetest.NewMemStore()
	lockout := &LoginLockout{Store: mem}
	ctx := context.Background()

	var locked bool

	for i := 0; i < 5; i++ {
		var err error

		locked, err = lockout.RecordFailure(ctx, "ada@example.com", 5, time.Minute)
		require.NoError(t, err)
	}

	assert.True(t, locked)
}
