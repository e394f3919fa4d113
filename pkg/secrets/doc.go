// Package secrets protects short sensitive strings (such as TOTP seeds) at
// rest with field-level AES-256-GCM encryption.
//
// The key material comes from a single operator-supplied secret, injected as
// an explicit Config rather than read from hidden globals. Material that
// base64-decodes to exactly 32 bytes is used directly as the AES-256 key;
// anything else is treated as a passphrase and stretched with
// PBKDF2-SHA256 (100k iterations, fixed versioned salt). This lets operators
// choose between a pre-generated random key and a memorable passphrase.
//
// Ciphertexts are self-contained: "enc:" + base64(nonce || ciphertext || tag)
// with a fresh 12-byte nonce per call and a 16-byte GCM tag.
//
// # Usage
//
//	cipher, err := secrets.NewCipher(secrets.Config{Key: os.Getenv("DATA_ENCRYPTION_KEY")})
//	if err != nil {
//	    // missing key material is a startup failure, never degrade to plaintext
//	}
//
//	blob, err := cipher.Encrypt("JBSWY3DPEHPK3PXP")
//
//	res, err := cipher.Decrypt(blob)
//	if res.Source == secrets.SourcePlaintext {
//	    // legacy unencrypted row, schedule re-encryption
//	}
//
// Decrypt passes values without the "enc:" marker through unchanged and tags
// the result with SourcePlaintext so callers can tell migrated rows apart
// from legacy ones. A GCM tag mismatch is reported as ErrDecryptionFailed;
// it indicates key rotation mismatch or tampering and must not be retried
// silently.
//
// Errors wrap package sentinels (ErrKeyMaterialMissing, ErrDecryptionFailed,
// ErrInvalidCiphertext) and can be matched with errors.Is.
package secrets
