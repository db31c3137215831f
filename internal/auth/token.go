package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMalformed indicates the token could not be parsed at all.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenInvalid indicates the signature does not match the server secret.
	ErrTokenInvalid = errors.New("token signature invalid")
	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Identity is the set of claims embedded in a session token.
type Identity struct {
	ID    string
	Email string
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed session tokens. Stateless; a token is
// a pure function of identity, secret, and current time.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the lifetime stamped into issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a session token for the given identity.
func (c *TokenCodec) Issue(identity Identity) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity.
func (c *TokenCodec) Verify(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenInvalid
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return &Identity{
		ID:    claims.Subject,
		Email: claims.Email,
	}, nil
}
