package mfa

import "errors"

var (
	// ErrNotConfigured is returned when a user has no MFA record at all.
	ErrNotConfigured = errors.New("mfa is not configured for this user")

	// ErrNotEnabled is returned when an operation requires a verified and
	// enabled MFA record but the user has only provisioned one.
	ErrNotEnabled = errors.New("mfa is not enabled for this user")

	// ErrAlreadyEnabled is returned when setup is requested for a user whose
	// MFA is already verified and enabled.
	ErrAlreadyEnabled = errors.New("mfa is already enabled for this user")

	// ErrIntegrity signals that a stored secret could not be decrypted.
	// This is fatal for the record and is never resolved by retrying.
	ErrIntegrity = errors.New("stored mfa secret failed integrity check")

	// ErrInvalidAction is returned when a verification request names an
	// action other than setup or login.
	ErrInvalidAction = errors.New("invalid verification action")

	ErrUnauthorized      = errors.New("user identity missing from request")
	ErrFailedToProvision = errors.New("failed to provision mfa")
	ErrStorageFailure    = errors.New("mfa storage operation failed")
)
