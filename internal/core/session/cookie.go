package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the signed session ID.
const CookieName = "fleet_session"

// NewID mints a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// CookieCodec signs and verifies the session ID that travels in the browser
// cookie. The cookie proves nothing about authentication (that lives in the
// Store); it only stops a client from forging someone else's session ID.
type CookieCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewCookieCodec(secret string, ttl time.Duration) *CookieCodec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CookieCodec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the cookie lifetime, used for the Max-Age attribute.
func (c *CookieCodec) TTL() time.Duration {
	return c.ttl
}

// Encode wraps the session ID in a signed token.
func (c *CookieCodec) Encode(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": time.Now().Add(c.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Decode verifies the signed token and returns the session ID inside it.
func (c *CookieCodec) Decode(value string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", fmt.Errorf("invalid session cookie")
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", fmt.Errorf("session cookie missing id")
	}
	return sid, nil
}
