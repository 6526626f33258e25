package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, carries the
	// wrong kind, or fails signature verification.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenKind tags signed claims; tokens of one kind are never accepted where
// another kind is expected.
type TokenKind string

const (
	// TokenKindAccess is a short-lived credential accepted by protected routes.
	TokenKindAccess TokenKind = "access"
	// TokenKindRefreshIntent marks a token minted solely to drive the refresh
	// exchange; it is never accepted as an access credential.
	TokenKindRefreshIntent TokenKind = "refresh-intent"
)

// Claims holds the signed payload of an issued token. Kind is serialized as
// "typ" to match the wire format of the original service.
type Claims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"typ"`
}

// TokenCodec issues and verifies HS256-signed tokens with a shared symmetric key.
// The codec is stateless: verification never consults storage, so an access
// token stays valid until its natural expiry even after session revocation.
type TokenCodec struct {
	key    []byte
	issuer string
}

// NewTokenCodec returns a TokenCodec that signs with the given key (injected
// from configuration, held immutable for the process lifetime) and stamps
// issuer on every token.
func NewTokenCodec(key []byte, issuer string) *TokenCodec {
	return &TokenCodec{key: key, issuer: issuer}
}

// Issue signs claims for subject with the given kind and ttl. issuedAt and
// expiresAt are derived from the current clock; the call has no side effects.
func (c *TokenCodec) Issue(subject string, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.key)
}

// Verify parses the token, checks the HMAC signature, expiry, and issuer, and
// returns the claims. Returns ErrInvalidToken for every failure mode so callers
// cannot distinguish a forged token from an expired one.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.key, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != c.issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyKind verifies the token and additionally requires the given kind.
func (c *TokenCodec) VerifyKind(tokenString string, kind TokenKind) (*Claims, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
