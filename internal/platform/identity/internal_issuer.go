package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// InternalIssuer mints and verifies the internal HS256 access tokens issued
// by Login (§4.5), with a 1h TTL and the claim set §4.5 specifies.
type InternalIssuer struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// NewInternalIssuer builds an issuer with the spec's 1h default TTL.
func NewInternalIssuer(secret []byte, issuer, audience string) *InternalIssuer {
	return &InternalIssuer{Secret: secret, Issuer: issuer, Audience: audience, TTL: time.Hour}
}

// Issue mints a signed access token for the given principal.
func (i *InternalIssuer) Issue(p *Principal) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"iss":        i.Issuer,
		"aud":        i.Audience,
		"sub":        p.Sub,
		"email":      p.Email,
		"nickname":   p.Nickname,
		"provider":   "local",
		"role":       p.Role,
		"scope":      p.Scope,
		"iat":        now.Unix(),
		"nbf":        now.Unix(),
		"exp":        now.Add(i.TTL).Unix(),
		"token_use":  "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(i.Secret)
}

// Verify validates signature, audience, expiry/nbf (60s skew) and token_use,
// returning the derived principal.
func (i *InternalIssuer) Verify(tokenString string) (*Principal, DenyReason, error) {
	const skew = 60 * time.Second

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return i.Secret, nil
	}, jwt.WithIssuer(i.Issuer), jwt.WithLeeway(skew))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ReasonExpired, err
		}

		return nil, ReasonInvalidToken, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ReasonInvalidToken, fmt.Errorf("invalid claims")
	}

	if aud, _ := claims["aud"].(string); aud != i.Audience {
		return nil, ReasonWrongAudience, fmt.Errorf("unexpected audience %q", aud)
	}

	if exp, ok := claims["exp"].(float64); ok {
		if time.Unix(int64(exp), 0).Add(skew).Before(time.Now()) {
			return nil, ReasonExpired, fmt.Errorf("token expired")
		}
	}

	if use, _ := claims["token_use"].(string); use != "access" {
		return nil, ReasonInvalidToken, fmt.Errorf("unexpected token_use %q", use)
	}

	p := &Principal{
		Sub:      asString(claims["sub"]),
		Provider: "local",
		Email:    asString(claims["email"]),
		Role:     asString(claims["role"]),
		Nickname: asString(claims["nickname"]),
		Scope:    asString(claims["scope"]),
	}

	return p, "", nil
}

func asString(v any) string {
	if v == nil {
		return ""
	}

	s, _ := v.(string)

	return s
}
