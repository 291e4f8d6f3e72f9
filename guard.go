package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteMetadata is the static capability declaration attached to a route:
// whether it is public, and which roles may pass. Plain data, declared by
// the route owner and read by the guard.
type RouteMetadata struct {
	Public bool
	Roles  []UserRole
}

// Guard is the per-request gate in front of business handlers. It is a pure
// decision function over route metadata and the Authorization header; it
// keeps no state and is safe for concurrent use.
type Guard struct {
	auth       Authenticator
	users      UserStore
	authScheme string
	contextKey string
	logger     Logger
}

// NewGuard returns a Guard over the given authenticator and user store
func NewGuard(auth Authenticator, users UserStore) *Guard {
	return &Guard{
		auth:       auth,
		users:      users,
		authScheme: "Bearer",
		contextKey: "user",
		logger:     defLogger{},
	}
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithContextKey overrides the router locals key the middleware stores the
// resolved user under
func (g *Guard) WithContextKey(key string) *Guard {
	if key != "" {
		g.contextKey = key
	}
	return g
}

// WithAuthScheme overrides the expected Authorization scheme
func (g *Guard) WithAuthScheme(scheme string) *Guard {
	if scheme != "" {
		g.authScheme = scheme
	}
	return g
}

// Check evaluates the two gates for one request. Public routes pass without
// touching the header. Otherwise the bearer token must validate against the
// token service and the session store, and, when the route declares a role
// set, the claims' role must be a member. On allow it returns the resolved
// user (nil for public routes); on deny it returns ErrUnauthenticated or
// ErrForbidden. Collaborator outages surface as internal errors, never as an
// authentication verdict.
func (g *Guard) Check(ctx context.Context, route RouteMetadata, authorization string) (*User, error) {
	if route.Public {
		return nil, nil
	}

	token, ok := g.extractBearer(authorization)
	if !ok {
		g.logger.Debug("Guard deny: missing or malformed authorization header")
		return nil, ErrUnauthenticated
	}

	claims, err := g.auth.ValidateToken(ctx, token)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryInternal {
			return nil, err
		}
		g.logger.Debug("Guard deny: token rejected")
		return nil, ErrUnauthenticated
	}

	if len(route.Roles) > 0 && !RoleInSet(claims.Role(), route.Roles) {
		g.logger.Debug("Guard deny: role %q not in route set", claims.Role())
		return nil, ErrForbidden
	}

	subject, err := claims.SubjectUUID()
	if err != nil {
		g.logger.Error("Guard deny: token subject is not a user id: %v", err)
		return nil, ErrUnauthenticated
	}

	user, err := g.users.FindByID(ctx, subject)
	if err != nil {
		if errors.IsNotFound(err) {
			// Token outlived the user record.
			g.logger.Debug("Guard deny: subject %s no longer exists", subject)
			return nil, ErrUnauthenticated
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve user")
	}

	return user, nil
}

// Middleware adapts Check into a router middleware. On allow it stores the
// resolved user in the router locals and the request context for downstream
// handlers; on deny it hands the reason to the error handler, which renders
// one uniform response regardless of root cause.
func (g *Guard) Middleware(route RouteMetadata) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			user, err := g.Check(ctx.Context(), route, ctx.GetString(router.HeaderAuthorization, ""))
			if err != nil {
				return err
			}

			if user != nil {
				ctx.Locals(g.contextKey, user)
				ctx.SetContext(WithContext(ctx.Context(), user))
			}

			return ctx.Next()
		}
	}
}

// UserFromLocals retrieves the user the middleware stored for this request
func UserFromLocals(ctx router.Context, key string) (*User, bool) {
	if key == "" {
		key = "user"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	user, ok := raw.(*User)
	return user, ok
}

func (g *Guard) extractBearer(authorization string) (string, bool) {
	scheme := strings.TrimSpace(g.authScheme)
	l := len(scheme)
	// The scheme and token must be separated by a single space.
	if len(authorization) > l+1 && strings.EqualFold(authorization[:l], scheme) && authorization[l] == ' ' {
		token := strings.TrimSpace(authorization[l+1:])
		if token != "" {
			return token, true
		}
	}
	return "", false
}
