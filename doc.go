// Package auth implements credential and session based authentication with a
// role based request guard.
//
// Tokens are signed JWTs, but a token is only considered valid while it
// matches the session record stored for its subject. A new login replaces the
// record, which revokes every previously issued token for that user; logout
// deletes it. This gives single-active-session semantics and immediate
// revocation on top of otherwise stateless bearer tokens.
//
// All collaborators are passed in explicitly: a UserStore for user records, a
// SessionStore for the per-user session record, and a TokenService for
// signing and verification. There is no global state beyond the signing
// secret held by the TokenService.
package auth
