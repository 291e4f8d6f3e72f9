package auth

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controllers.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController exposes the auth operations as JSON routes.
type HTTPController struct {
	auth       Authenticator
	guard      *Guard
	contextKey string
	logger     Logger
}

// NewHTTPController creates the auth HTTP controller
func NewHTTPController(auth Authenticator, guard *Guard) *HTTPController {
	return &HTTPController{
		auth:       auth,
		guard:      guard,
		contextKey: "user",
		logger:     defLogger{},
	}
}

func (c *HTTPController) WithLogger(logger Logger) *HTTPController {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// RegisterRoutes mounts the auth routes. Every route goes through the guard
// with its own static metadata; register and login are marked public, the
// rest require a validated session.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	public := c.guard.Middleware(RouteMetadata{Public: true})
	authed := c.guard.Middleware(RouteMetadata{})

	group.Post("/register", c.Register, public)
	group.Post("/login", c.Login, public)
	group.Get("/logout", c.Logout, authed)
	group.Put("/password", c.UpdatePassword, authed)
	group.Get("/me", c.Me, authed)
}

// RegisterRequest payload
type RegisterRequest struct {
	Username        string `json:"username" form:"username"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(3, 32),
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(6, 72),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
		),
	)
}

func (c *HTTPController) Register(ctx router.Context) error {
	payload := new(RegisterRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid request payload"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": err.Error(),
		})
	}

	token, err := c.auth.Register(ctx.Context(), payload.Username, payload.Password, payload.ConfirmPassword)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"token": token,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (c *HTTPController) Login(ctx router.Context) error {
	payload := new(LoginRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid request payload"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": err.Error(),
		})
	}

	token, err := c.auth.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"token": token,
	})
}

func (c *HTTPController) Logout(ctx router.Context) error {
	user, ok := UserFromLocals(ctx, c.contextKey)
	if !ok {
		return c.handleError(ctx, ErrUnauthenticated)
	}

	if err := c.auth.Logout(ctx.Context(), user.ID); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]bool{
		"success": true,
	})
}

// ChangePasswordRequest payload
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" form:"old_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// Validate will run validation rules
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.OldPassword,
			validation.Required,
		),
		validation.Field(
			&r.NewPassword,
			validation.Required,
			validation.Length(6, 72),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
		),
	)
}

func (c *HTTPController) UpdatePassword(ctx router.Context) error {
	user, ok := UserFromLocals(ctx, c.contextKey)
	if !ok {
		return c.handleError(ctx, ErrUnauthenticated)
	}

	payload := new(ChangePasswordRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid request payload"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": err.Error(),
		})
	}

	err := c.auth.UpdatePassword(ctx.Context(), user.ID, payload.OldPassword, payload.NewPassword, payload.ConfirmPassword)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]bool{
		"success": true,
	})
}

func (c *HTTPController) Me(ctx router.Context) error {
	user, ok := UserFromLocals(ctx, c.contextKey)
	if !ok {
		return c.handleError(ctx, ErrUnauthenticated)
	}

	record, err := c.auth.Me(ctx.Context(), user.ID)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, record)
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	return writeError(ctx, c.logger, err)
}

// writeError maps error categories onto HTTP statuses. Authentication and
// authorization failures get one uniform body so the response never reveals
// whether a token was expired, revoked, or never valid.
func writeError(ctx router.Context, logger Logger, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "unexpected server error")
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return ctx.JSON(http.StatusUnauthorized, map[string]string{
			"error": "access denied",
		})
	case errors.CategoryAuthz:
		return ctx.JSON(http.StatusForbidden, map[string]string{
			"error": "access denied",
		})
	case errors.CategoryValidation:
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": richErr.Message,
			"code":  richErr.TextCode,
		})
	case errors.CategoryConflict:
		return ctx.JSON(http.StatusConflict, map[string]string{
			"error": richErr.Message,
			"code":  richErr.TextCode,
		})
	case errors.CategoryNotFound:
		return ctx.JSON(http.StatusNotFound, map[string]string{
			"error": richErr.Message,
			"code":  richErr.TextCode,
		})
	default:
		logger.Error("Unhandled error: %v", err)
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "service unavailable",
		})
	}
}
