package mfa

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage defines the persistence operations the MFA service needs.
// Implementations must be safe for concurrent use.
type Storage interface {
	// GetRecord returns the user's MFA record. Absence is reported as an
	// error wrapping ErrNotConfigured.
	GetRecord(ctx context.Context, userID uuid.UUID) (*Record, error)

	// UpsertRecord creates or replaces the user's record. Used during
	// provisioning, so it resets Enabled and VerifiedAt along with the
	// secret.
	UpsertRecord(ctx context.Context, record *Record) error

	// MarkVerified enables MFA and stamps verified_at if it was not set
	// before. A repeated call keeps the original verified_at but still
	// advances last_used_at.
	MarkVerified(ctx context.Context, userID uuid.UUID, at time.Time) error

	// TouchLastUsed advances last_used_at, never moving it backwards.
	TouchLastUsed(ctx context.Context, userID uuid.UUID, at time.Time) error

	// ReplaceRecoveryCodes atomically replaces the user's full recovery code
	// set with the given hashes. Either the whole new batch is stored or the
	// old batch survives untouched.
	ReplaceRecoveryCodes(ctx context.Context, userID uuid.UUID, hashes []string) error

	// ConsumeRecoveryCode deletes the matching hash and reports whether one
	// was present. A consumed code can never match again.
	ConsumeRecoveryCode(ctx context.Context, userID uuid.UUID, hash string) (bool, error)
}
