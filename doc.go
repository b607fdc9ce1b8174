// Package auth implements credential authentication and session token
// issuance: password verification, signed bearer tokens, account
// registration, and the password reset ticket workflow.
//
// Collaborators:
//   - IdentityStore is the capability interface the core needs from an
//     identity backend (lookup, password check, role listing, creation,
//     reset ticket lifecycle). NewIdentityStore provides the default
//     Bun-backed implementation; any storage engine can supply its own.
//   - Mailer dispatches reset links. Delivery failures surface to the
//     caller, the ticket itself is already minted and stays redeemable.
//
// Tokens:
//   - TokenService signs HS256 JWTs carrying one role claim per assigned
//     role, the username, and a fresh jti per issuance. The signing key is
//     process-wide configuration; an empty key refuses issuance rather
//     than degrade.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter describing login,
//     registration, and password reset events. Sinks run best-effort
//     (errors are logged) so you can forward to a database or queue
//     without blocking authentication.
package auth
