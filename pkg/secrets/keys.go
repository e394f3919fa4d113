package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the key length required for AES-256
	KeySize = 32

	// pbkdf2Iterations is the stretch count applied when the configured key
	// material is an operator passphrase rather than a pre-generated key.
	pbkdf2Iterations = 100_000
)

// kdfSalt provides application-level domain separation for passphrase
// stretching. Changing it invalidates every ciphertext derived from a
// passphrase, so it is versioned.
var kdfSalt = []byte("mfaguard-field-cipher-v1")

// deriveKey turns the configured key material into a 32-byte AES-256 key.
// A base64 string that decodes to exactly 32 bytes is used directly; anything
// else is treated as a passphrase and stretched with PBKDF2-SHA256.
func deriveKey(material string) []byte {
	if raw, err := base64.StdEncoding.DecodeString(material); err == nil && len(raw) == KeySize {
		return raw
	}
	return pbkdf2.Key([]byte(material), kdfSalt, pbkdf2Iterations, KeySize, sha256.New)
}

// clearBytes zeros out a byte slice to shorten the time derived key material
// stays in memory after use.
func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateKey creates a new random 32-byte key suitable for AES-256.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrKeyGenerationFailed, err)
	}
	return key, nil
}

// GenerateEncodedKey creates a new random key and returns it base64-encoded,
// ready to be stored in the DATA_ENCRYPTION_KEY environment variable.
func GenerateEncodedKey() (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
