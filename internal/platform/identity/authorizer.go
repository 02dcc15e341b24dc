package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/domain/apperr"
)

// Authorizer is invoked for every HTTP request and every WebSocket upgrade
// (§4.3). It is the only place that dispatches on the `iss` claim; every
// downstream consumer sees a uniform *Principal.
type Authorizer struct {
	InternalIssuer string // the configured internal issuer string compared against `iss`
	Internal       *InternalIssuer
	External       *ExternalProvider
}

// Authorize validates a bearer token and returns the derived principal, or
// an apperr.UnauthorizedError carrying one of the DenyReason codes in Code.
func (a *Authorizer) Authorize(ctx context.Context, bearerToken string) (*Principal, error) {
	tokenString := strings.TrimSpace(strings.TrimPrefix(bearerToken, "Bearer"))
	if tokenString == "" {
		return nil, apperr.UnauthorizedError{Code: string(ReasonInvalidToken), Message: "missing bearer token"}
	}

	iss, err := peekIssuer(tokenString)
	if err != nil {
		return nil, apperr.UnauthorizedError{Code: string(ReasonInvalidToken), Message: "malformed token"}
	}

	if iss == a.InternalIssuer {
		p, reason, err := a.Internal.Verify(tokenString)
		if err != nil {
			return nil, apperr.UnauthorizedError{Code: string(reason), Message: err.Error()}
		}

		return p, nil
	}

	if a.External == nil || iss != a.External.Issuer {
		return nil, apperr.UnauthorizedError{Code: string(ReasonUnknownIssuer), Message: "unrecognized issuer"}
	}

	p, reason, err := a.External.Verify(ctx, tokenString)
	if err != nil {
		return nil, apperr.UnauthorizedError{Code: string(reason), Message: err.Error()}
	}

	return p, nil
}

// peekIssuer decodes the JWT payload segment without verifying the
// signature, solely to decide which issuer's verifier to run.
func peekIssuer(tokenString string) (string, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return "", apperr.ValidationError{Message: "token must have three segments"}
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", err
	}

	var claims struct {
		Iss string `json:"iss"`
	}

	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", err
	}

	return claims.Iss, nil
}
