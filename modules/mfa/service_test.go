package mfa_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfaguard/modules/mfa"
	"github.com/dmitrymomot/mfaguard/pkg/secrets"
	"github.com/dmitrymomot/mfaguard/pkg/totp"
)

// fakeStorage is an in-memory Storage used across the service tests.
type fakeStorage struct {
	mu      sync.Mutex
	records map[uuid.UUID]*mfa.Record
	codes   map[uuid.UUID]map[string]struct{}

	failWith error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		records: make(map[uuid.UUID]*mfa.Record),
		codes:   make(map[uuid.UUID]map[string]struct{}),
	}
}

func (f *fakeStorage) GetRecord(_ context.Context, userID uuid.UUID) (*mfa.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	record, ok := f.records[userID]
	if !ok {
		return nil, mfa.ErrNotConfigured
	}
	cp := *record
	return &cp, nil
}

func (f *fakeStorage) UpsertRecord(_ context.Context, record *mfa.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	cp := *record
	f.records[record.UserID] = &cp
	return nil
}

func (f *fakeStorage) MarkVerified(_ context.Context, userID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[userID]
	if !ok {
		return mfa.ErrNotConfigured
	}
	record.Enabled = true
	if record.VerifiedAt == nil {
		record.VerifiedAt = &at
	}
	record.LastUsedAt = &at
	return nil
}

func (f *fakeStorage) TouchLastUsed(_ context.Context, userID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[userID]
	if !ok {
		return mfa.ErrNotConfigured
	}
	if record.LastUsedAt == nil || at.After(*record.LastUsedAt) {
		record.LastUsedAt = &at
	}
	return nil
}

func (f *fakeStorage) ReplaceRecoveryCodes(_ context.Context, userID uuid.UUID, hashes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	set := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	f.codes[userID] = set
	return nil
}

func (f *fakeStorage) ConsumeRecoveryCode(_ context.Context, userID uuid.UUID, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	set, ok := f.codes[userID]
	if !ok {
		return false, nil
	}
	if _, ok := set[hash]; !ok {
		return false, nil
	}
	delete(set, hash)
	return true, nil
}

const fixtureSecret = "JBSWY3DPEHPK3PXP"

// fixtureTime returns the middle of the given 30-second TOTP step.
func fixtureTime(counter int64) time.Time {
	return time.Unix(counter*30, 0).UTC()
}

func newTestService(t *testing.T, storage mfa.Storage, at time.Time, opts ...mfa.ServiceOption) (*mfa.Service, *secrets.Cipher) {
	t.Helper()

	cipher, err := secrets.NewCipher(secrets.Config{Key: "unit-test-passphrase"})
	require.NoError(t, err)

	opts = append([]mfa.ServiceOption{
		mfa.WithClock(func() time.Time { return at }),
	}, opts...)

	svc, err := mfa.NewService(mfa.Config{Issuer: "mfaguard-test"}, storage, cipher, opts...)
	require.NoError(t, err)
	return svc, cipher
}

func seedRecord(t *testing.T, storage *fakeStorage, cipher *secrets.Cipher, userID uuid.UUID, enabled bool) {
	t.Helper()

	encrypted, err := cipher.Encrypt(fixtureSecret)
	require.NoError(t, err)

	now := fixtureTime(990)
	record := &mfa.Record{
		UserID:          userID,
		SecretEncrypted: encrypted,
		Enabled:         enabled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if enabled {
		record.VerifiedAt = &now
	}
	require.NoError(t, storage.UpsertRecord(context.Background(), record))
}

func TestNewService(t *testing.T) {
	t.Parallel()

	cipher, err := secrets.NewCipher(secrets.Config{Key: "unit-test-passphrase"})
	require.NoError(t, err)

	_, err = mfa.NewService(mfa.Config{}, nil, cipher)
	assert.Error(t, err)

	_, err = mfa.NewService(mfa.Config{}, newFakeStorage(), nil)
	assert.Error(t, err)

	svc, err := mfa.NewService(mfa.Config{}, newFakeStorage(), cipher)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBeginSetup(t *testing.T) {
	t.Parallel()

	t.Run("provisions a disabled record with an encrypted secret", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		at := fixtureTime(1000)
		svc, cipher := newTestService(t, storage, at)
		userID := uuid.New()

		setup, err := svc.BeginSetup(context.Background(), userID, "user@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, setup.Secret)
		assert.Contains(t, setup.URI, "otpauth://totp/")
		assert.Contains(t, setup.URI, "mfaguard-test")
		assert.True(t, strings.HasPrefix(setup.QRCode, "data:image/png;base64,"))

		record, err := storage.GetRecord(context.Background(), userID)
		require.NoError(t, err)
		assert.False(t, record.Enabled)
		assert.Nil(t, record.VerifiedAt)
		assert.True(t, strings.HasPrefix(record.SecretEncrypted, secrets.EncryptedPrefix))

		decrypted, err := cipher.Decrypt(record.SecretEncrypted)
		require.NoError(t, err)
		assert.Equal(t, setup.Secret, decrypted.Value)
	})

	t.Run("re-provisioning replaces the pending secret", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, _ := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()

		first, err := svc.BeginSetup(context.Background(), userID, "user@example.com")
		require.NoError(t, err)
		second, err := svc.BeginSetup(context.Background(), userID, "user@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, first.Secret, second.Secret)
	})

	t.Run("rejects setup when already enabled", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()
		seedRecord(t, storage, cipher, userID, true)

		_, err := svc.BeginSetup(context.Background(), userID, "user@example.com")
		assert.ErrorIs(t, err, mfa.ErrAlreadyEnabled)
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()

	// Codes computed for fixtureSecret at steps 1000 and 999.
	const (
		codeAtStep     = "120699"
		codeAtPrevStep = "489000"
	)

	t.Run("setup verification enables the record", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()
		seedRecord(t, storage, cipher, userID, false)

		verified, err := svc.Verify(context.Background(), userID, codeAtStep, mfa.ActionSetup)
		require.NoError(t, err)
		assert.True(t, verified)

		record, err := storage.GetRecord(context.Background(), userID)
		require.NoError(t, err)
		assert.True(t, record.Enabled)
		require.NotNil(t, record.VerifiedAt)
		require.NotNil(t, record.LastUsedAt)
	})

	t.Run("login verification touches last use only", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()
		seedRecord(t, storage, cipher, userID, true)

		verified, err := svc.Verify(context.Background(), userID, codeAtStep, mfa.ActionLogin)
		require.NoError(t, err)
		assert.True(t, verified)

		record, err := storage.GetRecord(context.Background(), userID)
		require.NoError(t, err)
		require.NotNil(t, record.LastUsedAt)
		assert.Equal(t, fixtureTime(1000), *record.LastUsedAt)
	})

	t.Run("accepts the adjacent step within the skew window", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()
		seedRecord(t, storage, cipher, userID, true)

		verified, err := svc.Verify(context.Background(), userID, codeAtPrevStep, mfa.ActionLogin)
		require.NoError(t, err)
		assert.True(t, verified)
	})

	t.Run("wrong code is a clean false", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()
		seedRecord(t, storage, cipher, userID, true)

		verified, err := svc.Verify(context.Background(), userID, "000000", mfa.ActionLogin)
		require.NoError(t, err)
		assert.False(t, verified)

		record, err := storage.GetRecord(context.Background(), userID)
		require.NoError(t, err)
		assert.Nil(t, record.LastUsedAt, "failed attempts must not advance last use")
	})

	t.Run("malformed code is rejected as invalid input", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()
		seedRecord(t, storage, cipher, userID, true)

		_, err := svc.Verify(context.Background(), userID, "12345", mfa.ActionLogin)
		assert.ErrorIs(t, err, totp.ErrInvalidOTP)
	})

	t.Run("unknown action", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, _ := newTestService(t, storage, fixtureTime(1000))

		_, err := svc.Verify(context.Background(), uuid.New(), "120699", mfa.Action("reset"))
		assert.ErrorIs(t, err, mfa.ErrInvalidAction)
	})

	t.Run("missing record", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, _ := newTestService(t, storage, fixtureTime(1000))

		_, err := svc.Verify(context.Background(), uuid.New(), "120699", mfa.ActionLogin)
		assert.ErrorIs(t, err, mfa.ErrNotConfigured)
	})

	t.Run("corrupted ciphertext is an integrity failure", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()

		encrypted, err := cipher.Encrypt(fixtureSecret)
		require.NoError(t, err)
		tampered := encrypted[:len(encrypted)-4] + "AAAA"
		now := fixtureTime(990)
		require.NoError(t, storage.UpsertRecord(context.Background(), &mfa.Record{
			UserID:          userID,
			SecretEncrypted: tampered,
			Enabled:         true,
			VerifiedAt:      &now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}))

		_, err = svc.Verify(context.Background(), userID, "120699", mfa.ActionLogin)
		assert.ErrorIs(t, err, mfa.ErrIntegrity)
	})

	t.Run("plaintext legacy secret still verifies", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, _ := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()

		now := fixtureTime(990)
		require.NoError(t, storage.UpsertRecord(context.Background(), &mfa.Record{
			UserID:          userID,
			SecretEncrypted: fixtureSecret,
			Enabled:         true,
			VerifiedAt:      &now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}))

		verified, err := svc.Verify(context.Background(), userID, codeAtStep, mfa.ActionLogin)
		require.NoError(t, err)
		assert.True(t, verified)
	})
}

func TestGenerateRecoveryCodes(t *testing.T) {
	t.Parallel()

	t.Run("mints and stores hashed batch", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()
		seedRecord(t, storage, cipher, userID, true)

		codes, err := svc.GenerateRecoveryCodes(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, codes, 10)

		seen := make(map[string]struct{}, len(codes))
		for _, code := range codes {
			assert.Len(t, code, 8)
			assert.Regexp(t, "^[a-z0-9]{8}$", code)
			seen[code] = struct{}{}
		}
		assert.Len(t, seen, len(codes), "codes must be unique within a batch")

		// Stored form is the hash, never the plaintext.
		for _, code := range codes {
			_, stored := storage.codes[userID][totp.HashRecoveryCode(code)]
			assert.True(t, stored)
			_, raw := storage.codes[userID][code]
			assert.False(t, raw)
		}
	})

	t.Run("regeneration invalidates the previous batch", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()
		seedRecord(t, storage, cipher, userID, true)

		first, err := svc.GenerateRecoveryCodes(context.Background(), userID)
		require.NoError(t, err)
		_, err = svc.GenerateRecoveryCodes(context.Background(), userID)
		require.NoError(t, err)

		used, err := svc.UseRecoveryCode(context.Background(), userID, first[0])
		require.NoError(t, err)
		assert.False(t, used, "codes from a replaced batch must not verify")
	})

	t.Run("requires an enabled record", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()
		seedRecord(t, storage, cipher, userID, false)

		_, err := svc.GenerateRecoveryCodes(context.Background(), userID)
		assert.ErrorIs(t, err, mfa.ErrNotEnabled)

		_, err = svc.GenerateRecoveryCodes(context.Background(), uuid.New())
		assert.ErrorIs(t, err, mfa.ErrNotConfigured)
	})
}

func TestUseRecoveryCode(t *testing.T) {
	t.Parallel()

	t.Run("consumes exactly once", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()
		seedRecord(t, storage, cipher, userID, true)

		codes, err := svc.GenerateRecoveryCodes(context.Background(), userID)
		require.NoError(t, err)

		used, err := svc.UseRecoveryCode(context.Background(), userID, codes[0])
		require.NoError(t, err)
		assert.True(t, used)

		record, err := storage.GetRecord(context.Background(), userID)
		require.NoError(t, err)
		assert.NotNil(t, record.LastUsedAt)

		used, err = svc.UseRecoveryCode(context.Background(), userID, codes[0])
		require.NoError(t, err)
		assert.False(t, used, "a recovery code is single use")

		// Sibling codes remain valid.
		used, err = svc.UseRecoveryCode(context.Background(), userID, codes[1])
		require.NoError(t, err)
		assert.True(t, used)
	})

	t.Run("uniform miss for unknown user and wrong code", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, cipher := newTestService(t, storage, fixtureTime(1000))
		userID := uuid.New()
		seedRecord(t, storage, cipher, userID, true)
		_, err := svc.GenerateRecoveryCodes(context.Background(), userID)
		require.NoError(t, err)

		used, err := svc.UseRecoveryCode(context.Background(), userID, "wrongcode")
		require.NoError(t, err)
		assert.False(t, used)

		used, err = svc.UseRecoveryCode(context.Background(), uuid.New(), "wrongcode")
		require.NoError(t, err)
		assert.False(t, used)
	})

	t.Run("storage failure surfaces as error", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc, _ := newTestService(t, storage, fixtureTime(1000))
		storage.failWith = errors.New("connection reset")

		_, err := svc.UseRecoveryCode(context.Background(), uuid.New(), "whatever")
		assert.ErrorIs(t, err, mfa.ErrStorageFailure)
	})
}
