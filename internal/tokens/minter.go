// Package tokens generates the single-use secrets mailed to users for
// password reset and email verification. Only the SHA-256 digest of a
// token is ever persisted; the plaintext exists for one transmission.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// PlainLength is the length of every minted token: 32 random bytes
// rendered as lowercase hex.
const PlainLength = 64

// Generate returns a fresh token and the digest to persist in its place.
func Generate() (string, [32]byte, error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", [32]byte{}, err
	}

	plain := hex.EncodeToString(raw)
	return plain, sha256.Sum256([]byte(plain)), nil
}

// HashForLookup recomputes the digest of a candidate token so it can be
// matched against a stored hash without ever storing the secret.
func HashForLookup(candidate string) [32]byte {
	return sha256.Sum256([]byte(candidate))
}

// EncodeHash renders a digest as lowercase hex for stores that persist
// token hashes as text columns.
func EncodeHash(hash [32]byte) string {
	return hex.EncodeToString(hash[:])
}
