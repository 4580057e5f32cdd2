// Package auth owns user accounts and bearer authentication.
//
// It provides:
//   - bcrypt password hashing (HashPassword, VerifyPassword)
//   - HMAC-signed, self-contained access tokens whose subject is the
//     username (TokenService)
//   - resolution of an Authorization header to a stored user (Guard)
//   - the usuarios table repository and first-boot seeding
//
// Tokens are not stored server-side and cannot be revoked; their short
// lifetime (30 minutes by default) bounds the exposure of a leaked token.
package auth
