// internal/auth/token.go
//
// Signed admin bearer tokens.
//
// Context
// -------
// Admin sessions are stateless: a successful login mints an HS256 token
// carrying the account id and username plus issued-at and expiry claims.
// Possession of a valid token fully authorises admin operations until it
// expires; there is no revocation list, so the secret must be treated as
// equivalent to the admin password.
//
// Verify checks the signature before trusting any claim.  A token whose
// signature does not match is invalid regardless of its expiry, and a
// matching signature with a past expiry is invalid too.  Malformed input
// of any shape returns ErrInvalidToken, never a panic.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad segment count,
// bad signature, bad payload, or expiry in the past.  Callers must not
// distinguish further; the HTTP layer answers 401 either way.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the payload carried inside an admin token.  Subject holds the
// account id as a decimal string.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// Sign mints a token for the given account valid for ttl.
func Sign(subject, username string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify parses and validates token, returning its claims.  Only HS256 is
// accepted; any failure maps to ErrInvalidToken.
func Verify(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
