// internal/auth/password.go
//
// Salted, iterated password hashing for administrator accounts.
//
// The encoded record is self-describing:
//
//	pbkdf2$<iterations>$sha256$<salt-hex>$<hash-hex>
//
// so verification needs no external knowledge of parameters.  Records are
// written once by the bootstrap CLI; the login path only verifies.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 100_000
	hashKeyLen     = 32
	saltLen        = 16
)

// HashPassword derives a fresh record for password.  Two calls never
// produce the same record because each draws a new random salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: salt generation: %w", err)
	}
	saltHex := hex.EncodeToString(salt)

	key := pbkdf2.Key([]byte(password), []byte(saltHex), hashIterations, hashKeyLen, sha256.New)
	return fmt.Sprintf("pbkdf2$%d$sha256$%s$%s",
		hashIterations, saltHex, hex.EncodeToString(key)), nil
}

// VerifyPassword recomputes the derived key using the parameters embedded
// in encoded and compares in constant time.  Malformed records (wrong
// field count, wrong algorithm tag, unparsable iteration count) verify as
// false rather than erroring; the raw password never appears in any
// return value.
func VerifyPassword(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "pbkdf2" || parts[2] != "sha256" {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations < 1 {
		return false
	}
	salt, expected := parts[3], parts[4]

	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, hashKeyLen, sha256.New)
	return hmac.Equal([]byte(hex.EncodeToString(key)), []byte(expected))
}
