package token

import (
	"errors"
	"fmt"
	"time"

	"docvault/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Issuer mints and parses access tokens. HMAC keys are library-grade glue;
// the interesting identity decisions all happen in the RBAC layer.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the time source, mainly for tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	if now != nil {
		i.now = now
	}
	return i
}

func (i *Issuer) Issue(username string, role domain.Role) (string, error) {
	now := i.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Role: string(role),
	})
	return tok.SignedString(i.secret)
}

// Parse validates a token and returns the subject and role it carries. The
// role still gets re-checked against the user store on every request; the
// token is identity, not authorization.
func (i *Issuer) Parse(raw string) (string, domain.Role, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !tok.Valid {
		return "", domain.RoleGuest, ErrInvalidToken
	}
	if c.Subject == "" {
		return "", domain.RoleGuest, ErrInvalidToken
	}
	return c.Subject, domain.ParseRole(c.Role), nil
}
