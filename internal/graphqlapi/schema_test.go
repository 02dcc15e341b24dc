package graphqlapi

import (
	"context"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/goal"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/messaging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/user"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/identity"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/ratelimit"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/storetest"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestResolvers() (*Resolvers, *identity.Principal) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mem := storetest.NewMemStore()

	users := &user.Service{
		Store: mem, Logger: logging.NewNop(),
		Issuer:  identity.NewInternalIssuer([]byte("test-secret"), "questbound-internal", "questbound-api"),
		Lockout: &ratelimit.LoginLockout{Store: mem},
		Now:     fixedClock(now),
	}

	goals := &goal.Service{Store: mem, Logger: logging.NewNop(), Now: fixedClock(now)}
	msgs := &messaging.Service{RoomStore: mem, GuildStore: mem, Hub: messaging.NewHub(), Logger: logging.NewNop(), Now: fixedClock(now)}

	return &Resolvers{Users: users, Goals: goals, Messaging: msgs}, &identity.Principal{Sub: "u1", Email: "ada@example.com", Nickname: "ada"}
}

func TestCreateGoalThenMyGoals(t *testing.T) {
	resolvers, principal := newTestResolvers()

	schema, err := NewSchema(resolvers)
	require.NoError(t, err)

	ctx := WithPrincipal(context.Background(), principal)

	createResult := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `mutation { createGoal(title: "Ship it", deadline: "2026-02-01T00:00:00Z") { id title } }`,
		Context:       ctx,
	})
	require.Empty(t, createResult.Errors)

	listResult := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `query { myGoals { id title } }`,
		Context:       ctx,
	})
	require.Empty(t, listResult.Errors)

	data := listResult.Data.(map[string]interface{})
	goals := data["myGoals"].([]interface{})
	require.Len(t, goals, 1)
	assert.Equal(t, "Ship it", goals[0].(map[string]interface{})["title"])
}

func TestMe_RequiresAuthenticatedPrincipal(t *testing.T) {
	resolvers, _ := newTestResolvers()

	schema, err := NewSchema(resolvers)
	require.NoError(t, err)

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `query { me { id } }`,
		Context:       context.Background(),
	})

	require.NotEmpty(t, result.Errors)
}

func TestIsEmailAvailable_ReflectsSignupState(t *testing.T) {
	resolvers, principal := newTestResolvers()
	ctx := WithPrincipal(context.Background(), principal)

	schema, err := NewSchema(resolvers)
	require.NoError(t, err)

	_, err = resolvers.Users.Signup(ctx, user.SignupInput{
		Email: "taken@example.com", Nickname: "taken", Password: "P@ssw0rd!",
		Country: "US", BirthDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `query { isEmailAvailable(email: "taken@example.com") }`,
		Context:       ctx,
	})
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	assert.Equal(t, false, data["isEmailAvailable"])
}
