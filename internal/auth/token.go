package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mentorhub/apiserver/types"
)

const defaultTokenTTL = 30 * 24 * time.Hour

// ErrInvalidToken is returned by Verify for any token that fails
// signature, shape, kind or expiry checks. Never retried.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload: the standard subject/expiry set plus the
// principal kind tag.
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
}

// Codec issues and verifies bearer tokens. It is purely functional over
// the signing secret, which is loaded once at startup.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec constructs a Codec. A non-positive ttl falls back to 30 days.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token embedding the principal id and kind.
func (c *Codec) Issue(principalID int, kind types.PrincipalKind) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(principalID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Kind: string(kind),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and validates a token and returns the embedded principal
// id and kind. Any failure maps to ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (int, types.PrincipalKind, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	id, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || id < 1 {
		return 0, "", ErrInvalidToken
	}

	kind, err := types.ParsePrincipalKind(claims.Kind)
	if err != nil {
		return 0, "", ErrInvalidToken
	}

	return id, kind, nil
}
