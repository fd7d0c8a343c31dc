// Package token implements the signed identity token pair: Issue creates a
// time-limited JWT carrying a user ID, Verify checks the signature and
// expiry and returns the user ID.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned by Verify for any token that is malformed,
// carries a bad signature, is expired or lacks a user ID.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds a user-specific identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Codec issues and verifies identity tokens with a process-wide signing
// key loaded once at startup. A Codec is immutable after creation.
type Codec struct {
	signingSecretKey []byte
	ttl              time.Duration
}

// New creates a Codec with the given signing key and token lifetime.
func New(signingSecretKey []byte, ttl time.Duration) *Codec {
	return &Codec{
		signingSecretKey: signingSecretKey,
		ttl:              ttl,
	}
}

// Issue creates a signed token for the given user ID, valid for the
// configured lifetime from now.
func (c *Codec) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(c.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify parses and validates a token string and returns the user ID it
// carries. Expiry is enforced: an expired token fails with ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.signingSecretKey, nil
		},
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
