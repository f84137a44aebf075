package auth // package auth issues and verifies the signed session tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/rustamli/newsdesk-admin/internal/model"
)

// Claims is what a verified session token carries.  The rank is a cached
// copy taken at login time: it is good enough for coarse route gating but
// must never be trusted for destructive or role-changing operations, which
// re-read the rank from the database (see the authz package).
type Claims struct {
	UserID      uint64     // subject, users.id
	Rank        model.Rank // role cached at issue time
	DisplayName string     // shown to collaborators, e.g. in editing presence
}

// ErrInvalidToken is returned by Verify for any malformed, expired,
// tampered or otherwise unusable token.  Callers get no partial decode.
var ErrInvalidToken = errors.New("invalid session token")

// Issuer signs and verifies HS256 session tokens.  The secret is
// process-wide configuration loaded once at startup.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer builds an Issuer with the given signing secret and token TTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured session lifetime, used when setting cookies.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue builds and signs a session token for the user.  The token includes
// standard claims: subject (sub), role, display name, expiration (exp) and
// issued at (iat).
func (i *Issuer) Issue(u model.User) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.ttl)
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"role": uint8(u.Role),
		"name": u.DisplayName(),
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses the raw token and returns its claims.  It fails closed:
// any parse error, signature mismatch, wrong signing method or expired
// token yields ErrInvalidToken, never a partially trusted decode.
func (i *Issuer) Verify(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{}
	// Numeric JSON values decode as float64.
	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 {
		return Claims{}, ErrInvalidToken
	}
	out.UserID = uint64(sub)
	if role, ok := mc["role"].(float64); ok {
		out.Rank = model.ParseRank(int(role))
	}
	if name, ok := mc["name"].(string); ok {
		out.DisplayName = name
	}
	return out, nil
}
