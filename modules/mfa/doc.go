// Package mfa orchestrates multi-factor authentication: TOTP enrollment and
// verification, one-time recovery codes, and the state machine that moves a
// user from no MFA through a provisioned secret to an enabled second factor.
//
// TOTP secrets are encrypted with secrets.Cipher before they reach storage.
// The package exposes a Service for direct use and a chi Router for the HTTP
// surface; persistence is behind the Storage interface with a pgx adapter in
// the pgstore subpackage.
package mfa
