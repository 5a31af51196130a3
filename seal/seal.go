// Package seal provides authenticated at-rest encryption for sensitive
// profile fields. Ciphertext is serialized as a hex envelope of the form
// nonce:tag:ciphertext so that stored values are printable and the
// components can be split without length prefixes.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"strings"
)

const (
	// KeySize is the required key length in bytes (AES-256).
	KeySize = 32

	nonceSize = 16
	tagSize   = 16

	envelopeDelimiter = ":"
	envelopeSegments  = 3
)

var (
	// ErrInvalidKey is an exported constant or variable used by the account engine.
	ErrInvalidKey = errors.New("seal: key must be 32 bytes")
	// ErrDecryptionFailed is an exported constant or variable used by the account engine.
	ErrDecryptionFailed = errors.New("seal: decryption failed")
)

// Cipher defines a public type used by rentauth APIs.
//
// Cipher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Cipher struct {
	aead cipher.AEAD
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt describes the encrypt operation and its observable behavior.
//
// Encrypt may return an error when input validation, dependency calls, or security checks fail.
// Encrypt does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)

	// Seal appends the tag to the ciphertext; the envelope carries it as a
	// separate segment.
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(nonce) +
		envelopeDelimiter +
		hex.EncodeToString(tag) +
		envelopeDelimiter +
		hex.EncodeToString(ciphertext), nil
}

// Decrypt describes the decrypt operation and its observable behavior.
//
// Decrypt fails closed: any malformed envelope, bad hex segment, or
// authentication failure yields [ErrDecryptionFailed] and never partial plaintext.
// Decrypt does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Cipher) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, envelopeDelimiter)
	if len(parts) != envelopeSegments {
		return "", ErrDecryptionFailed
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSize {
		return "", ErrDecryptionFailed
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return "", ErrDecryptionFailed
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrDecryptionFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}
