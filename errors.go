package auth

import (
	"github.com/goliatone/go-errors"
)

// Domain errors surfaced to callers of the Authenticator. Login failures
// collapse wrong-username and wrong-password into the single
// ErrInvalidCredentials value so responses can not be used to enumerate
// usernames.
var (
	// ErrDuplicateUsername is returned on registration when the username is taken
	ErrDuplicateUsername = errors.New("username already exists", errors.CategoryConflict).
				WithTextCode("DUPLICATE_USERNAME")

	// ErrPasswordMismatch is returned when password and confirmation differ
	ErrPasswordMismatch = errors.New("passwords do not match", errors.CategoryValidation).
				WithTextCode("PASSWORD_MISMATCH")

	// ErrInvalidCredentials covers both unknown username and wrong password
	ErrInvalidCredentials = errors.New("invalid username or password", errors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS").
				WithCode(errors.CodeUnauthorized)

	// ErrUserNotFound is returned for lookups of missing users
	ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
			WithTextCode("USER_NOT_FOUND")
)

// Token and guard errors. Every validation failure inside ValidateToken (bad
// signature, expiry, session record gone, session record holding a different
// token) collapses into ErrTokenInvalid; callers never learn which check
// failed.
var (
	ErrTokenInvalid = errors.New("invalid token", errors.CategoryAuth).
			WithTextCode("INVALID_TOKEN").
			WithCode(errors.CodeUnauthorized)

	// ErrUnauthenticated is the guard's deny reason for absent, malformed,
	// or unvalidatable credentials
	ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
				WithTextCode("UNAUTHENTICATED").
				WithCode(errors.CodeUnauthorized)

	// ErrForbidden is the guard's deny reason for a valid identity whose
	// role is outside the route's required set
	ErrForbidden = errors.New("insufficient permissions", errors.CategoryAuthz).
			WithTextCode("FORBIDDEN")
)

// Internal token service errors. The authenticator maps both onto
// ErrTokenInvalid before they reach a caller.
var (
	ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED")

	ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED")
)

// Password hashing errors
var (
	// ErrNoEmptyString rejects hashing an empty password
	ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
				WithTextCode("EMPTY_PASSWORD")

	// ErrMismatchedHashAndPassword is the verification failure value
	ErrMismatchedHashAndPassword = errors.New("hashed password is not the hash of the given password", errors.CategoryAuth).
					WithTextCode("HASH_MISMATCH")
)
