// Package auth implements the session subsystem: signed access/refresh token
// issuance and verification, per-request bearer authentication, and the
// reconciliation of externally owned identities with locally owned profiles.
//
// Trust model:
//   - CredentialVerifier implementations (Supabase GoTrue, the local dev
//     provider) are the source of truth for credentials. This package never
//     stores or checks passwords.
//   - TokenService owns the signing secret and mints self contained tokens.
//     Verification never calls the external provider.
//
// Reconciliation:
//   - Profile rows may trail identity creation (an upstream trigger fills the
//     table). Reconciler retries reads with bounded doubling backoff, creates
//     the row when it is genuinely absent, and degrades to a synthesized
//     in-memory profile when storage stays unavailable, so authentication
//     keeps working through propagation lag.
package auth
