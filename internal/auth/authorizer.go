// internal/auth/authorizer.go
//
// Dual admin credential scheme.
//
// Protected endpoints accept either a pre-shared operator token (compared
// in constant time) or a signed bearer token from the login flow.  The
// two schemes are a logical OR: whichever is configured may be used, and
// an unconfigured scheme is simply not offered.  Evaluation happens in a
// single accept/reject function so handlers never branch on the
// credential kind.
package auth

import (
	"crypto/subtle"
	"strings"
)

// Authorizer evaluates admin bearer credentials.  Zero value rejects
// everything, which is the safe default for an unconfigured deployment.
type Authorizer struct {
	APIToken  string
	JWTSecret []byte
}

// Authorize reports whether bearer grants admin access.
func (a Authorizer) Authorize(bearer string) bool {
	if bearer == "" {
		return false
	}
	if a.APIToken != "" &&
		subtle.ConstantTimeCompare([]byte(bearer), []byte(a.APIToken)) == 1 {
		return true
	}
	if len(a.JWTSecret) > 0 {
		if _, err := Verify(bearer, a.JWTSecret); err == nil {
			return true
		}
	}
	return false
}

// BearerFromHeader extracts the credential from an Authorization header.
// Returns false when the header is absent or not a Bearer scheme.
func BearerFromHeader(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
