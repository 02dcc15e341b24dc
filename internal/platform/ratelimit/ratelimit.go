// Package ratelimit implements C4: per-IP and per-principal sliding-window
// quotas persisted as TTL'd store rows, grounded on the spec's own design
// ("a store row RL#<scope>#<key> / WINDOW#<minute> with counter, incremented
// conditionally"). The teacher's Redis/Lua rate limiter
// (pkg/net/http/ratelimit_test.go) is the behavioral reference (headers,
// fail-closed-by-default semantics, exact-limit edge case) adapted onto the
// store instead of Redis, since the spec's data model makes the rate-limit
// bucket a first-class entity.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/store"
)

// WindowStore is the narrow store capability the limiter needs.
type WindowStore interface {
	IncrementWindow(ctx context.Context, pk, sk string, ttl time.Time) (int64, error)
}

// Policy describes one quota: Max requests per Window, and whether a
// Transient store failure should fail open (best effort) or closed.
type Policy struct {
	Max        int
	Window     time.Duration
	BestEffort bool
}

// Limiter enforces Policy-shaped quotas against rows in WindowStore.
type Limiter struct {
	Store WindowStore
}

func New(s WindowStore) *Limiter {
	return &Limiter{Store: s}
}

// Result carries the information needed to set rate-limit response headers.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetsAt   time.Time
}

// Allow increments the counter for (scope, key) in the current window and
// reports whether the request is within Policy.Max. Scope is typically "ip"
// or "user"; key is the IP address or principal sub.
func (l *Limiter) Allow(ctx context.Context, scope, key string, p Policy) (Result, error) {
	now := time.Now()
	windowStart := now.Truncate(p.Window)
	resetsAt := windowStart.Add(p.Window)

	pk := store.RateLimitPK(scope, key)
	sk := store.RateLimitSK(windowStart.Unix() / 60)

	count, err := l.Store.IncrementWindow(ctx, pk, sk, resetsAt)
	if err != nil {
		if p.BestEffort && errors.Is(err, store.ErrTransient) {
			return Result{Allowed: true, Limit: p.Max, Remaining: p.Max}, nil
		}

		return Result{}, apperr.DependencyError{Dependency: "store", Message: "rate limit store unavailable", Err: err}
	}

	remaining := p.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:    int(count) <= p.Max,
		Limit:      p.Max,
		Remaining:  remaining,
		RetryAfter: time.Until(resetsAt),
		ResetsAt:   resetsAt,
	}, nil
}

// Common policies named in §4.4.
var (
	WaitlistPerIP   = Policy{Max: 5, Window: time.Minute}
	LoginPerIP      = Policy{Max: 10, Window: time.Minute}
	InvitesPerUser  = Policy{Max: 20, Window: time.Hour}
	CommentsPerUser = Policy{Max: 100, Window: time.Hour}
	ChatPerUser     = Policy{Max: 60, Window: time.Minute}
)

// LoginLockout tracks consecutive failed logins per username, independent of
// the per-IP window above (§4.4: "a separate lockout after 5 consecutive
// failures per username").
type LoginLockout struct {
	Store WindowStore
}

// RecordFailure increments the failure counter for the given login key and
// reports whether the account should now be locked out.
func (ll *LoginLockout) RecordFailure(ctx context.Context, loginKey string, threshold int, window time.Duration) (lockedOut bool, err error) {
	now := time.Now()
	pk := store.LoginAttemptPK(loginKey)
	sk := store.LoginAttemptSK(now.Truncate(window).Unix())

	count, err := ll.Store.IncrementWindow(ctx, pk, sk, now.Add(window))
	if err != nil {
		return false, err
	}

	return int(count) >= threshold, nil
}
