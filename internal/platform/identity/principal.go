// Package identity implements the custom request authorizer (C3): dual-issuer
// token validation and principal derivation. The Policy type below is not
// built anywhere; Authorize returns only the Principal. Grounded
// on the teacher's common/net/http/withJWT.go JWTMiddleware/JWKProvider and
// common/mcasdoor CasdoorConnection, generalized from a single external
// issuer to the spec's two-issuer dispatch.
package identity

// Principal is the authenticated subject derived from a validated token.
type Principal struct {
	Sub      string
	Provider string // "local" (internal issuer) or the external IdP name
	Email    string
	Role     string
	Nickname string
	Scope    string
}

// Policy is the set of route patterns a principal may invoke, plus the
// propagated context the downstream handler receives. Route matching is
// intentionally coarse (owner-only checks live in each domain service);
// the authorizer's job is authentication, not fine-grained authorization.
type Policy struct {
	Principal *Principal
	Allowed   []string
}

// DenyReason enumerates the short machine-readable reasons §4.3 requires on failure.
type DenyReason string

const (
	ReasonInvalidToken   DenyReason = "invalid_token"
	ReasonExpired        DenyReason = "expired"
	ReasonWrongAudience  DenyReason = "wrong_audience"
	ReasonUnknownIssuer  DenyReason = "unknown_issuer"
	ReasonJWKSUnreachable DenyReason = "jwks_unreachable"
)
