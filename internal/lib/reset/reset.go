// Package reset generates single-use password-reset tokens. Only the
// SHA-256 hash of a token is ever stored; the raw value exists solely in
// the reset link emailed to the user.
package reset

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const tokenBytes = 20

// NewToken returns the raw token for the reset link together with the
// hash that goes to storage.
func NewToken() (raw string, hash string, err error) {
	const op = "lib.reset.NewToken"

	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	raw = hex.EncodeToString(buf)

	return raw, HashToken(raw), nil
}

// HashToken maps a raw token to its stored form.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
