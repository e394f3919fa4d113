// Package totp implements RFC 4226/6238 one-time password generation and
// verification together with single-use recovery code primitives.
//
// The package is deliberately free of storage and transport concerns: it
// computes and checks codes, nothing else. Encryption of stored secrets lives
// in pkg/secrets and orchestration in modules/mfa.
//
// # TOTP
//
//	secret, _ := totp.GenerateSecretKey()
//
//	uri, _ := totp.GetTOTPURI(totp.TOTPParams{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "Acme",
//	})
//
//	ok, err := totp.ValidateTOTP(secret, "123456")
//
// Verification accepts the current 30-second counter plus a configurable
// number of adjacent steps (WithSkew, default ±1, i.e. up to 90 seconds of
// effective drift). Secrets are decoded permissively: case, padding,
// whitespace and stray characters are dropped before Base32 decoding, which
// matches how authenticator tooling treats formatted secrets. Presented and
// expected codes are compared in constant time.
//
// # Recovery codes
//
//	codes, _ := totp.GenerateRecoveryCodes(totp.DefaultRecoveryCodeCount)
//	hash := totp.HashRecoveryCode(codes[0])
//	ok := totp.VerifyRecoveryCode(presented, hash)
//
// Codes are 8 lowercase-alphanumeric characters from crypto/rand with
// rejection sampling, hashed with SHA-256 for storage. The plaintext batch is
// returned exactly once; there is no API to recover it later.
//
// All exported operations return errors wrapping package sentinels
// (ErrInvalidSecret, ErrInvalidOTP, ...) suitable for errors.Is.
package totp
