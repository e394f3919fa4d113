package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultDigits    = 6      // Standard 6-digit TOTP codes
	DefaultPeriod    = 30     // 30-second validity window (RFC 6238 standard)
	DefaultSkew      = 1      // Accepted counter drift in steps on either side
	DefaultAlgorithm = "SHA1" // HMAC-SHA1 algorithm (RFC 6238 standard)
)

var otpFormatRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, DefaultDigits))

// ValidateOption adjusts verification behavior.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	skew int
}

// WithSkew sets how many 30-second steps on either side of the current
// counter are accepted. The default of 1 tolerates up to 90 seconds of
// effective clock drift, which widens the replay surface slightly but matches
// standard authenticator tooling. Negative values are ignored.
func WithSkew(steps int) ValidateOption {
	return func(c *validateConfig) {
		if steps >= 0 {
			c.skew = steps
		}
	}
}

// TOTPParams contains the parameters for TOTP URI generation.
type TOTPParams struct {
	Secret      string // Base32-encoded TOTP secret key (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
	Algorithm   string // HMAC algorithm (optional, defaults to SHA1)
	Digits      int    // Number of digits in generated codes (optional, defaults to 6)
	Period      int    // Code validity period in seconds (optional, defaults to 30)
}

// Validate ensures all required TOTP parameters are present and valid.
func (p TOTPParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if _, err := decodeSecret(p.Secret); err != nil {
		return err
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GetDefaults returns a copy with RFC 6238 standard defaults applied to zero-valued fields.
func (p TOTPParams) GetDefaults() TOTPParams {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// GenerateSecretKey generates a new Base32-encoded secret key for TOTP.
func GenerateSecretKey() (string, error) {
	secret := make([]byte, 20) // 160-bit secret (RFC 4226 recommendation for cryptographic strength)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// GetTOTPURI creates a properly encoded TOTP URI for use with authenticator apps.
// The URI format follows the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func GetTOTPURI(params TOTPParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	params = params.GetDefaults()

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", params.Algorithm)
	query.Set("digits", fmt.Sprintf("%d", params.Digits))
	query.Set("period", fmt.Sprintf("%d", params.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// decodeSecret decodes a Base32 secret permissively: it uppercases the input
// and silently drops padding, whitespace and any other non-Base32 character
// before decoding. Stored secrets come from a trusted generator, and standard
// TOTP tooling tolerates formatted secrets ("jbsw y3dp ..."), so dropping
// stray characters is preferable to failing loudly.
func decodeSecret(secret string) ([]byte, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(secret) {
		if (r >= 'A' && r <= 'Z') || (r >= '2' && r <= '7') {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return nil, ErrInvalidSecret
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(cleaned)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// ValidateTOTP validates the TOTP code provided by the user against the
// current time.
func ValidateTOTP(secret, otp string, opts ...ValidateOption) (bool, error) {
	return ValidateTOTPAt(secret, otp, time.Now(), opts...)
}

// ValidateTOTPAt validates the TOTP code against the 30-second window
// containing t plus the configured skew on either side. Code comparison is
// constant-time for every candidate counter.
func ValidateTOTPAt(secret, otp string, t time.Time, opts ...ValidateOption) (bool, error) {
	cfg := validateConfig{skew: DefaultSkew}
	for _, opt := range opts {
		opt(&cfg)
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	otp = strings.TrimSpace(otp)
	if !otpFormatRegex.MatchString(otp) {
		return false, ErrInvalidOTP
	}

	counter := t.Unix() / int64(DefaultPeriod)

	// Check every candidate counter in the window instead of returning on the
	// first match so the comparison count does not depend on the input.
	match := 0
	for c := counter - int64(cfg.skew); c <= counter+int64(cfg.skew); c++ {
		candidate := fmt.Sprintf("%0*d", DefaultDigits, GenerateHOTP(key, c, DefaultDigits))
		match |= subtle.ConstantTimeCompare([]byte(candidate), []byte(otp))
	}

	return match == 1, nil
}

// GenerateTOTP generates a time-based one-time password for the current
// 30-second window. The secret must be a Base32-encoded string.
func GenerateTOTP(secret string) (string, error) {
	return GenerateTOTPAt(secret, time.Now())
}

// GenerateTOTPAt generates a TOTP code for the 30-second window containing
// the specified time. Useful for testing or generating codes for specific
// moments.
func GenerateTOTPAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	counter := t.Unix() / int64(DefaultPeriod)
	return fmt.Sprintf("%0*d", DefaultDigits, GenerateHOTP(key, counter, DefaultDigits)), nil
}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm.
// The algorithm converts a counter value into a numeric code using HMAC-SHA1.
// SHA-1 is mandated by the RFC for interoperability with authenticator apps
// and must not be swapped for a stronger hash unilaterally.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	// Convert counter to big-endian 8-byte array (RFC 4226 requirement)
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter = counter >> 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	hash := mac.Sum(nil)

	// Dynamic truncation (RFC 4226 §5.3): use last 4 bits as offset into hash
	offset := hash[len(hash)-1] & 0x0f
	// Extract 31-bit value (clear MSB to ensure positive number)
	code := (int(hash[offset]&0x7f) << 24) |
		(int(hash[offset+1]&0xff) << 16) |
		(int(hash[offset+2]&0xff) << 8) |
		(int(hash[offset+3] & 0xff))

	return code % int(math.Pow10(digits))
}
