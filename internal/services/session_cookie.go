package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "serenify-advisor"

var ErrInvalidCookie = errors.New("invalid session cookie")

type sessionClaims struct {
	jwt.RegisteredClaims
	Token string `json:"sid"`
}

// CookieCodec signs session tokens into tamper-evident cookie values.
type CookieCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCookieCodec(secret string, ttl time.Duration) *CookieCodec {
	if ttl <= 0 {
		ttl = SessionDuration
	}
	return &CookieCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Encode wraps a session token in an HS256 JWT.
func (c *CookieCodec) Encode(token string) (string, error) {
	now := c.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Token: token,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies value and returns the session token inside it.
func (c *CookieCodec) Decode(value string) (string, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid || claims.Token == "" {
		return "", ErrInvalidCookie
	}
	return claims.Token, nil
}
