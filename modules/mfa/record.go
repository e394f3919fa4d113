package mfa

import (
	"time"

	"github.com/google/uuid"
)

// Record is a user's MFA enrollment state. A user moves through three
// states: no record at all, a provisioned record with Enabled=false, and a
// verified record with Enabled=true. Enabled implies VerifiedAt is set.
type Record struct {
	UserID          uuid.UUID
	SecretEncrypted string
	Enabled         bool
	VerifiedAt      *time.Time
	LastUsedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Action names the context of an OTP verification.
type Action string

const (
	// ActionSetup verifies a freshly provisioned secret and enables MFA.
	ActionSetup Action = "setup"
	// ActionLogin verifies a code during sign-in.
	ActionLogin Action = "login"
)

// ParseAction validates a wire-level action string.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionSetup, ActionLogin:
		return Action(s), nil
	default:
		return "", ErrInvalidAction
	}
}
