// Package credentials provides password authentication primitives (bcrypt
// hashing, JWT session tokens, a Bun-backed credential store, HTTP helpers)
// plus the trust bookkeeping around them.
//
// Account trust:
//   - Users carry failed-attempt, lockout, verification, and reset fields that
//     are persisted via Bun. Transition helpers on the model (RecordFailedLogin,
//     VerifyEmail, GenerateResetToken, UpdatePassword) keep the pairs consistent
//     so the store only ever writes whole field groups.
//   - Five consecutive failures lock an account for fifteen minutes. Lockout is
//     checked before the password hash is ever touched.
//
// Anti-enumeration:
//   - Login collapses unknown-email and wrong-password outcomes into a single
//     error, and password reset requests return an identical body whether or
//     not the email maps to an account. Verification and reset secrets travel
//     out-of-band only.
//
// Session tokens:
//   - TokenService mints HS256 tokens carrying the account id and email.
//     Validation distinguishes expiry from every other failure, and the
//     jwtware middleware threads the authenticated identity into the request
//     context for strict or optional routes.
package credentials
