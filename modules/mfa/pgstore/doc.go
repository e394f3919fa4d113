// Package pgstore persists MFA records and recovery code hashes in
// PostgreSQL via pgx. Recovery code replacement is transactional and
// consumption is a single DELETE so one-time use holds under concurrency.
package pgstore
