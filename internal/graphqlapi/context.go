// Package graphqlapi implements C12: a graphql-go schema exposing read and
// write operations as thin wrappers over the same domain services the REST
// handlers in internal/httpapi call, enforcing identical ownership rules.
package graphqlapi

import (
	"context"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/identity"
)

type principalCtxKey struct{}

// WithPrincipal attaches the authenticated principal to a resolver context.
func WithPrincipal(ctx context.Context, p *identity.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

func principalFrom(ctx context.Context) (*identity.Principal, error) {
	p, _ := ctx.Value(principalCtxKey{}).(*identity.Principal)
	if p == nil {
		return nil, apperr.UnauthorizedError{Code: "missing_token", Message: "missing Authorization header"}
	}

	return p, nil
}
