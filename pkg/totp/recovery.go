package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

const (
	// DefaultRecoveryCodeCount is the batch size minted per user.
	DefaultRecoveryCodeCount = 10

	// RecoveryCodeLength is the length of each plaintext code.
	RecoveryCodeLength = 8
)

// recoveryCodeAlphabet keeps codes human-typable: lowercase letters and
// digits, 36 symbols, no ambiguous casing.
const recoveryCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRecoveryCodes creates cryptographically secure backup codes for
// account recovery. Each code is RecoveryCodeLength characters drawn
// uniformly from the lowercase-alphanumeric alphabet.
func GenerateRecoveryCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidRecoveryCodeCount
	}

	codes := make([]string, count)
	for i := 0; i < count; i++ {
		code, err := randomCode(RecoveryCodeLength)
		if err != nil {
			return nil, errors.Join(ErrFailedToGenerateRecoveryCode, err)
		}
		codes[i] = code
	}
	return codes, nil
}

// randomCode draws characters with rejection sampling so every alphabet
// symbol is equally likely. 252 is the largest multiple of 36 below 256.
func randomCode(length int) (string, error) {
	const limit = byte(252)

	out := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, recoveryCodeAlphabet[b%36])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// HashRecoveryCode creates a SHA-256 hex digest for storage. The plaintext
// code is never persisted.
func HashRecoveryCode(code string) string {
	hash := sha256.Sum256([]byte(code))
	return hex.EncodeToString(hash[:])
}

// VerifyRecoveryCode compares a presented code against a stored hash in
// constant time to close the timing side channel.
func VerifyRecoveryCode(code, hashedCode string) bool {
	computed := HashRecoveryCode(code)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hashedCode)) == 1
}
