// Package token issues and verifies HS256 bearer tokens for user sessions.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"reviewhub/internal/domain"
)

const issuer = "reviewhub"

type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, ttl time.Duration) (*JWT, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty secret")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the issue time, for tests.
func (j *JWT) WithClock(now func() time.Time) *JWT {
	cp := *j
	cp.now = now
	return &cp
}

func (j *JWT) Issue(userID int64) (string, error) {
	now := j.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// Verify returns the user id carried by a valid token. Every failure is
// reported as domain.ErrUnauthorized.
func (j *JWT) Verify(tokenString string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(j.now))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject", domain.ErrUnauthorized)
	}
	return id, nil
}

var _ domain.TokenIssuer = (*JWT)(nil)
