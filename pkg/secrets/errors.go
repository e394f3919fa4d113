package secrets

import "errors"

var (
	// Configuration errors
	ErrKeyMaterialMissing  = errors.New("encryption key material is not configured")
	ErrKeyGenerationFailed = errors.New("failed to generate encryption key")

	// Encryption/decryption errors
	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
)
