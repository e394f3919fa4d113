package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// EncryptedPrefix marks a value as encrypted by this package. Values without
// the prefix are passed through Decrypt unchanged, which allows unencrypted
// legacy rows to coexist with encrypted ones during migration.
const EncryptedPrefix = "enc:"

// Config holds the operator-supplied key material for field encryption.
// The value is either a base64-encoded 32-byte key or an arbitrary passphrase.
type Config struct {
	Key string `env:"DATA_ENCRYPTION_KEY,required"`
}

// Source indicates whether a Decrypt result was actually decrypted or passed
// through as legacy plaintext. Callers on security-sensitive paths must check
// it instead of treating every returned value as verified-encrypted.
type Source int

const (
	// SourceDecrypted means the value was authenticated and decrypted.
	SourceDecrypted Source = iota
	// SourcePlaintext means the stored value carried no encryption marker
	// and was returned as-is.
	SourcePlaintext
)

// Result is the outcome of a Decrypt call.
type Result struct {
	Value  string
	Source Source
}

// Cipher performs authenticated field-level encryption of short strings with
// AES-256-GCM. It holds only the raw configured material; the AES key is
// re-derived for every call so no derived key outlives a single operation.
type Cipher struct {
	material string
}

// NewCipher validates the configuration and returns a ready Cipher.
func NewCipher(cfg Config) (*Cipher, error) {
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, ErrKeyMaterialMissing
	}
	return &Cipher{material: cfg.Key}, nil
}

// Encrypt encrypts plaintext and returns "enc:" + base64(nonce || ciphertext || tag).
// A fresh random 12-byte nonce is generated per call.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	key := deriveKey(c.material)
	defer clearBytes(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	sealed := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Input without the "enc:" marker is returned
// unchanged with SourcePlaintext. An authentication tag mismatch surfaces as
// ErrDecryptionFailed and never as a wrong-but-plausible plaintext.
func (c *Cipher) Decrypt(blob string) (Result, error) {
	if !strings.HasPrefix(blob, EncryptedPrefix) {
		return Result{Value: blob, Source: SourcePlaintext}, nil
	}

	sealed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(blob, EncryptedPrefix))
	if err != nil {
		return Result{}, errors.Join(ErrDecryptionFailed, ErrInvalidCiphertext, err)
	}

	key := deriveKey(c.material)
	defer clearBytes(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return Result{}, errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(sealed) < nonceSize {
		return Result{}, errors.Join(ErrDecryptionFailed, ErrInvalidCiphertext)
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Result{}, errors.Join(ErrDecryptionFailed, err)
	}

	return Result{Value: string(plaintext), Source: SourceDecrypted}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
