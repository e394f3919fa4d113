package pgstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mfaguard/modules/mfa"
	"github.com/dmitrymomot/mfaguard/pkg/pg"
)

// Store is the pgx implementation of mfa.Storage.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetRecord(ctx context.Context, userID uuid.UUID) (*mfa.Record, error) {
	const query = `
		SELECT user_id, totp_secret_ciphertext, is_enabled, verified_at, last_used_at, created_at, updated_at
		FROM mfa_records
		WHERE user_id = $1`

	var record mfa.Record
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&record.UserID,
		&record.SecretEncrypted,
		&record.Enabled,
		&record.VerifiedAt,
		&record.LastUsedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, mfa.ErrNotConfigured
		}
		return nil, err
	}
	return &record, nil
}

// UpsertRecord writes a provisioned record. On conflict the secret is
// replaced and the enabled/verified state reset, which restarts enrollment
// for a user who never finished verifying.
func (s *Store) UpsertRecord(ctx context.Context, record *mfa.Record) error {
	const query = `
		INSERT INTO mfa_records (user_id, totp_secret_ciphertext, is_enabled, verified_at, last_used_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			totp_secret_ciphertext = EXCLUDED.totp_secret_ciphertext,
			is_enabled = EXCLUDED.is_enabled,
			verified_at = EXCLUDED.verified_at,
			last_used_at = EXCLUDED.last_used_at,
			updated_at = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query,
		record.UserID,
		record.SecretEncrypted,
		record.Enabled,
		record.VerifiedAt,
		record.LastUsedAt,
		record.CreatedAt,
		record.UpdatedAt,
	)
	return err
}

// MarkVerified enables MFA. verified_at is written only once; repeat calls
// keep the original enrollment time but still count as recent use.
func (s *Store) MarkVerified(ctx context.Context, userID uuid.UUID, at time.Time) error {
	const query = `
		UPDATE mfa_records
		SET is_enabled = TRUE,
			verified_at = COALESCE(verified_at, $2),
			last_used_at = $2,
			updated_at = $2
		WHERE user_id = $1`

	tag, err := s.pool.Exec(ctx, query, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mfa.ErrNotConfigured
	}
	return nil
}

// TouchLastUsed advances last_used_at. GREATEST keeps the later timestamp
// when concurrent verifications land out of order.
func (s *Store) TouchLastUsed(ctx context.Context, userID uuid.UUID, at time.Time) error {
	const query = `
		UPDATE mfa_records
		SET last_used_at = GREATEST(last_used_at, $2),
			updated_at = GREATEST(updated_at, $2)
		WHERE user_id = $1`

	tag, err := s.pool.Exec(ctx, query, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mfa.ErrNotConfigured
	}
	return nil
}

// ReplaceRecoveryCodes swaps the user's recovery code set inside one
// transaction. A failure anywhere rolls back and leaves the old batch valid.
func (s *Store) ReplaceRecoveryCodes(ctx context.Context, userID uuid.UUID, hashes []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM recovery_codes WHERE user_id = $1`, userID); err != nil {
		return err
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, hash := range hashes {
		batch.Queue(
			`INSERT INTO recovery_codes (user_id, code_hash, created_at) VALUES ($1, $2, $3)`,
			userID, hash, now,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ConsumeRecoveryCode deletes the matching hash. The DELETE doubles as the
// one-time-use guarantee: two concurrent attempts race on the row and only
// one sees RowsAffected()==1.
func (s *Store) ConsumeRecoveryCode(ctx context.Context, userID uuid.UUID, hash string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM recovery_codes WHERE user_id = $1 AND code_hash = $2`,
		userID, hash,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

var _ mfa.Storage = (*Store)(nil)
