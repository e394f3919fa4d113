package mfa

// Config holds environment-driven settings for the MFA service.
type Config struct {
	// Issuer is the service name shown in authenticator apps.
	Issuer string `env:"MFA_ISSUER" envDefault:"mfaguard"`

	// RecoveryCodeCount is the batch size minted by GenerateRecoveryCodes.
	RecoveryCodeCount int `env:"MFA_RECOVERY_CODE_COUNT" envDefault:"10"`

	// SkewSteps is the number of 30-second steps accepted on either side of
	// the current one during TOTP validation.
	SkewSteps int `env:"MFA_SKEW_STEPS" envDefault:"1"`

	// QRCodeSize is the side length in pixels of generated QR codes.
	QRCodeSize int `env:"MFA_QR_CODE_SIZE" envDefault:"256"`
}
