package mfa

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfaguard/pkg/qrcode"
	"github.com/dmitrymomot/mfaguard/pkg/sanitizer"
	"github.com/dmitrymomot/mfaguard/pkg/secrets"
	"github.com/dmitrymomot/mfaguard/pkg/totp"
)

// Service orchestrates MFA enrollment, OTP verification, and recovery code
// lifecycle on top of a Storage implementation. Secrets are encrypted before
// they ever reach storage and decrypted only for the duration of a check.
type Service struct {
	cfg     Config
	storage Storage
	cipher  *secrets.Cipher
	log     *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the MFA service.
func NewService(cfg Config, storage Storage, cipher *secrets.Cipher, opts ...ServiceOption) (*Service, error) {
	if storage == nil {
		return nil, errors.New("mfa: storage is required")
	}
	if cipher == nil {
		return nil, errors.New("mfa: cipher is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "mfaguard"
	}
	if cfg.RecoveryCodeCount <= 0 {
		cfg.RecoveryCodeCount = totp.DefaultRecoveryCodeCount
	}
	if cfg.SkewSteps < 0 {
		cfg.SkewSteps = totp.DefaultSkew
	}
	if cfg.QRCodeSize <= 0 {
		cfg.QRCodeSize = qrcode.DefaultSize
	}

	s := &Service{
		cfg:     cfg,
		storage: storage,
		cipher:  cipher,
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Setup holds everything a client needs to enroll an authenticator app.
// The plaintext secret appears here and nowhere else.
type Setup struct {
	Secret string
	URI    string
	QRCode string
}

// BeginSetup provisions a fresh TOTP secret for the user and stores it
// encrypted with MFA disabled. Calling it again before verification simply
// re-provisions; calling it once MFA is enabled is rejected so an attacker
// with a stolen session cannot silently swap the second factor.
func (s *Service) BeginSetup(ctx context.Context, userID uuid.UUID, accountName string) (*Setup, error) {
	record, err := s.storage.GetRecord(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotConfigured) {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	if record != nil && record.Enabled {
		return nil, ErrAlreadyEnabled
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return nil, errors.Join(ErrFailedToProvision, err)
	}

	encrypted, err := s.cipher.Encrypt(secret)
	if err != nil {
		return nil, errors.Join(ErrFailedToProvision, err)
	}

	now := s.now().UTC()
	if err := s.storage.UpsertRecord(ctx, &Record{
		UserID:          userID,
		SecretEncrypted: encrypted,
		Enabled:         false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}); err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}

	uri, err := totp.GetTOTPURI(totp.TOTPParams{
		Secret:      secret,
		AccountName: accountName,
		Issuer:      s.cfg.Issuer,
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToProvision, err)
	}

	qr, err := qrcode.GenerateDataURI(uri, s.cfg.QRCodeSize)
	if err != nil {
		return nil, errors.Join(ErrFailedToProvision, err)
	}

	s.log.InfoContext(ctx, "mfa secret provisioned",
		slog.String("user_id", userID.String()),
		slog.String("account", sanitizer.MaskString(accountName, 4)))

	return &Setup{Secret: secret, URI: uri, QRCode: qr}, nil
}

// Verify checks a TOTP code for the user. A wrong code is (false, nil);
// errors are reserved for missing records, integrity failures, and storage
// trouble. On success the record state advances: setup verification enables
// MFA, login verification stamps last use.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, code string, action Action) (bool, error) {
	if action != ActionSetup && action != ActionLogin {
		return false, ErrInvalidAction
	}

	record, err := s.storage.GetRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return false, ErrNotConfigured
		}
		return false, errors.Join(ErrStorageFailure, err)
	}

	secret, err := s.decryptSecret(ctx, record)
	if err != nil {
		return false, err
	}

	ok, err := totp.ValidateTOTPAt(secret, code, s.now(), totp.WithSkew(s.cfg.SkewSteps))
	if err != nil {
		// Malformed input, not a wrong guess.
		return false, err
	}
	if !ok {
		return false, nil
	}

	now := s.now().UTC()
	switch {
	case action == ActionSetup && !record.Enabled:
		if err := s.storage.MarkVerified(ctx, userID, now); err != nil {
			return false, errors.Join(ErrStorageFailure, err)
		}
		s.log.InfoContext(ctx, "mfa enabled", slog.String("user_id", userID.String()))
	default:
		if err := s.storage.TouchLastUsed(ctx, userID, now); err != nil {
			return false, errors.Join(ErrStorageFailure, err)
		}
	}

	return true, nil
}

// GenerateRecoveryCodes mints a fresh batch of one-time recovery codes for an
// enabled record and atomically replaces any previous batch. The plaintext
// codes are returned exactly once; only their hashes are stored.
func (s *Service) GenerateRecoveryCodes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	record, err := s.storage.GetRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, ErrNotConfigured
		}
		return nil, errors.Join(ErrStorageFailure, err)
	}
	if !record.Enabled {
		return nil, ErrNotEnabled
	}

	codes, err := totp.GenerateRecoveryCodes(s.cfg.RecoveryCodeCount)
	if err != nil {
		return nil, err
	}

	hashes := make([]string, len(codes))
	for i, code := range codes {
		hashes[i] = totp.HashRecoveryCode(code)
	}

	if err := s.storage.ReplaceRecoveryCodes(ctx, userID, hashes); err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}

	s.log.InfoContext(ctx, "recovery codes regenerated",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(codes)))

	return codes, nil
}

// UseRecoveryCode attempts to consume a recovery code. Unknown user, wrong
// code, and already-used code all report (false, nil) so a caller cannot
// probe which accounts have MFA. A consumed code counts as MFA use.
func (s *Service) UseRecoveryCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	consumed, err := s.storage.ConsumeRecoveryCode(ctx, userID, totp.HashRecoveryCode(code))
	if err != nil {
		return false, errors.Join(ErrStorageFailure, err)
	}
	if !consumed {
		return false, nil
	}

	if err := s.storage.TouchLastUsed(ctx, userID, s.now().UTC()); err != nil {
		return false, errors.Join(ErrStorageFailure, err)
	}

	s.log.InfoContext(ctx, "recovery code consumed", slog.String("user_id", userID.String()))
	return true, nil
}

func (s *Service) decryptSecret(ctx context.Context, record *Record) (string, error) {
	result, err := s.cipher.Decrypt(record.SecretEncrypted)
	if err != nil {
		s.log.ErrorContext(ctx, "mfa secret integrity failure",
			slog.String("user_id", record.UserID.String()))
		return "", errors.Join(ErrIntegrity, err)
	}
	if result.Source == secrets.SourcePlaintext {
		// Legacy rows written before field encryption was introduced.
		s.log.WarnContext(ctx, "mfa secret stored in plaintext",
			slog.String("user_id", record.UserID.String()))
	}
	return result.Value, nil
}
