package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/identity"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/ratelimit"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/storetest"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func validSignup(email, nickname string) SignupInput {
	return SignupInput{
		Email: email, Nickname: nickname, Password: "P@ssw0rd!", Country: "US",
		BirthDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	mem := storetest.NewMemStore()
	issuer := identity.NewInternalIssuer([]byte("test-secret"), "questbound-internal", "questbound-api")

	return &Service{
		Store: mem, Logger: logging.NewNop(), Issuer: issuer,
		Lockout: &ratelimit.LoginLockout{Store: mem},
		Now:     fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

// TestSignup_DuplicateEmailConflicts mirrors the §8 "Signup race" fixture:
// the second signup with the same email must fail with a conflict while the
// first succeeds.
func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, validSignup("ada@example.com", "ada1"))
	require.NoError(t, err)

	_, err = svc.Signup(ctx, validSignup("ada@example.com", "ada2"))
	require.Error(t, err)

	available, err := svc.IsEmailAvailable(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestSignup_RejectsWeakPassword(t *testing.T) {
	svc := newTestService(t)

	in := validSignup("weak@example.com", "weakpw")
	in.Password = "alllowercase"

	_, err := svc.Signup(context.Background(), in)
	require.Error(t, err)
}

func TestLogin_SucceedsAfterConfirmation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, validSignup("bob@example.com", "bob"))
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEmail(ctx, u.ID, u.ConfirmToken))

	logged, token, err := svc.Login(ctx, "1.2.3.4", "bob@example.com", "P@ssw0rd!")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPasswordFails(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, validSignup("carol@example.com", "carol"))
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEmail(ctx, u.ID, u.ConfirmToken))

	_, _, err = svc.Login(ctx, "1.2.3.4", "carol@example.com", "WrongPass1!")
	require.Error(t, err)
}

func TestLogin_RecordsFailureAgainstLockoutOnBadPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, validSignup("dave@example.com", "dave"))
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEmail(ctx, u.ID, u.ConfirmToken))

	for i := 0; i < 4; i++ {
		_, _, err = svc.Login(ctx, "9.9.9.9", "dave@example.com", "WrongPass1!")
		require.Error(t, err)
	}

	// Login has already recorded 4 failures against "email:dave@example.com";
	// a direct 5th increment should cross the lockout threshold.
	locked, err := svc.Lockout.RecordFailure(ctx, "email:dave@example.com", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestLogin_RejectsWithTooManyRequestsOncePastLockoutThreshold(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, validSignup("erin@example.com", "erin"))
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEmail(ctx, u.ID, u.ConfirmToken))

	var lastErr error

	for i := 0; i < 5; i++ {
		_, _, lastErr = svc.Login(ctx, "8.8.8.8", "erin@example.com", "WrongPass1!")
		require.Error(t, lastErr)
	}

	require.ErrorAs(t, lastErr, &apperr.TooManyRequestsError{})

	// A 6th attempt, even with the correct password, must still be rejected
	// by the lockout check before the password is ever compared.
	_, _, err = svc.Login(ctx, "8.8.8.8", "erin@example.com", "P@ssw0rd!")
	require.ErrorAs(t, err, &apperr.TooManyRequestsError{})
}
