package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Auther orchestrates registration, login, logout, password changes, and
// token validation over its collaborators. It holds no mutable state of its
// own, so one instance serves arbitrarily many concurrent requests.
type Auther struct {
	users      UserStore
	sessions   SessionStore
	tokens     TokenService
	sessionTTL time.Duration
	logger     Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Auther. The session TTL should match the
// token TTL so the session record never outlives the token it vouches for.
func NewAuthenticator(users UserStore, sessions SessionStore, tokens TokenService, sessionTTL time.Duration) *Auther {
	return &Auther{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		logger:     defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Register creates a new user with the default role and logs them in.
// Fails with ErrDuplicateUsername or ErrPasswordMismatch.
func (s *Auther) Register(ctx context.Context, username, password, confirmPassword string) (string, error) {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return "", ErrDuplicateUsername
	} else if !errors.IsNotFound(err) {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to check username availability")
	}

	if password != confirmPassword {
		return "", ErrPasswordMismatch
	}

	hash, err := HashPassword(password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return "", richErr
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user, err := s.users.Create(ctx, &User{
		Username:     username,
		PasswordHash: hash,
		Role:         RoleUser,
	})
	if err != nil {
		// A duplicate slipping past the availability check means a
		// concurrent registration won the race on the unique index.
		if isDuplicateKey(err) {
			return "", ErrDuplicateUsername
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "could not create user")
	}

	return s.issueSession(ctx, user)
}

// Login verifies credentials and issues a fresh token. Unknown username and
// wrong password produce the identical ErrInvalidCredentials value. The new
// session record overwrites any prior one, revoking earlier tokens.
func (s *Auther) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Debug("Login attempt for unknown username")
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Debug("Login attempt with wrong password: user_id=%s", user.ID)
		return "", ErrInvalidCredentials
	}

	return s.issueSession(ctx, user)
}

// ValidateToken checks signature and expiry, then requires the presented
// token to match the stored session record byte for byte. The store match is
// the revocation mechanism: a superseded, logged-out, or expired-by-TTL
// session makes a cryptographically valid token unusable. Every validation
// failure collapses into ErrTokenInvalid.
func (s *Auther) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		s.logger.Debug("Token validation failed: %v", err)
		return nil, ErrTokenInvalid
	}

	stored, err := s.sessions.Get(ctx, claims.Subject())
	if err != nil {
		// Store outages must not turn into an authentication verdict.
		return nil, errors.Wrap(err, errors.CategoryInternal, "session lookup failed")
	}

	if stored == "" || stored != token {
		s.logger.Debug("Token not backed by a live session: subject=%s", claims.Subject())
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Logout deletes the session record, revoking the current token. Idempotent.
func (s *Auther) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, userID.String()); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete session")
	}
	return nil
}

// UpdatePassword verifies the old password and stores a new digest. The
// active session is revoked so every outstanding token stops validating;
// the caller must log in again with the new password.
func (s *Auther) UpdatePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword, confirmPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}

	if err := ComparePasswordAndHash(oldPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return richErr
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	if err := s.users.UpdatePasswordDigest(ctx, user.ID, hash); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update password")
	}

	if err := s.sessions.Delete(ctx, user.ID.String()); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to revoke session after password change")
	}

	return nil
}

// Me returns the full user record for the given id
func (s *Auther) Me(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}
	return user, nil
}

// isDuplicateKey detects a unique-constraint violation reported by the user
// store, either as an already-categorized conflict or as a raw driver error.
func isDuplicateKey(err error) bool {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Category == errors.CategoryConflict {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (s *Auther) issueSession(ctx context.Context, user *User) (string, error) {
	token, err := s.tokens.Generate(user.ID.String(), user.Role)
	if err != nil {
		return "", err
	}

	if err := s.sessions.Put(ctx, user.ID.String(), token, s.sessionTTL); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to store session")
	}

	return token, nil
}
