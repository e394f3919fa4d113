package totp

import "errors"

var (
	ErrFailedToGenerateSecretKey    = errors.New("failed to generate TOTP secret key")
	ErrMissingSecret                = errors.New("missing secret")
	ErrInvalidSecret                = errors.New("invalid secret")
	ErrMissingAccountName           = errors.New("missing account name")
	ErrMissingIssuer                = errors.New("missing issuer")
	ErrInvalidOTP                   = errors.New("invalid OTP format")
	ErrInvalidRecoveryCodeCount     = errors.New("invalid recovery code count, must be greater than 0")
	ErrFailedToGenerateRecoveryCode = errors.New("failed to generate recovery code")
)
