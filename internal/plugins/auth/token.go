package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors returned by TokenIssuer.Verify. Callers can distinguish
// an expired session (prompt re-login) from a malformed or forged token.
var (
	ErrTokenExpired = errors.New("session token expired")
	ErrTokenInvalid = errors.New("session token invalid")
)

// sessionClaims are the JWT claims carried by a session token: the standard
// registered set plus the account id.
type sessionClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid"`
}

// TokenIssuer signs and verifies stateless bearer session tokens. Tokens
// bind an account id to an absolute expiry; forging one requires the
// server-held signing secret. Revocation is NOT encoded in the token --
// the logged_out flag on the account is the sole revocation mechanism.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer with the given HMAC secret and
// token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed HS256 token for the given account id.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the account id the token
// was issued for. Returns ErrTokenExpired for a well-formed but expired
// token, ErrTokenInvalid for everything else.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (any, error) {
		// Reject alg-substitution: only HMAC tokens are ever issued.
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	if !token.Valid || claims.UID == "" {
		return "", ErrTokenInvalid
	}

	return claims.UID, nil
}
