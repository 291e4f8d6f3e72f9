package auth

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// UsersHTTPController exposes admin-only user management routes in front of
// the Users repository.
type UsersHTTPController struct {
	users  Users
	guard  *Guard
	logger Logger
}

// NewUsersHTTPController creates the user management controller
func NewUsersHTTPController(users Users, guard *Guard) *UsersHTTPController {
	return &UsersHTTPController{
		users:  users,
		guard:  guard,
		logger: defLogger{},
	}
}

func (c *UsersHTTPController) WithLogger(logger Logger) *UsersHTTPController {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// RegisterRoutes mounts the user CRUD routes, all gated on the admin role
func (c *UsersHTTPController) RegisterRoutes(group RouteRegistrar) {
	admin := c.guard.Middleware(RouteMetadata{Roles: []UserRole{RoleAdmin}})

	group.Get("/", c.List, admin)
	group.Put("/:id", c.Update, admin)
	group.Delete("/:id", c.Delete, admin)
}

func (c *UsersHTTPController) List(ctx router.Context) error {
	query := ListUsersQuery{
		Username: ctx.Query("username", ""),
		Page:     queryInt(ctx, "current", 1),
		PageSize: queryInt(ctx, "page_size", 10),
	}

	if role, ok := ParseRole(ctx.Query("role", "")); ok {
		query.Role = role
	}

	records, total, err := c.users.List(ctx.Context(), query)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"data":  records,
		"total": total,
	})
}

// UpdateUserRequest payload. Empty fields are left unchanged.
type UpdateUserRequest struct {
	Username        string `json:"username" form:"username"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	Role            string `json:"role" form:"role"`
}

// Validate will run validation rules
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Length(3, 32),
		),
		validation.Field(
			&r.Password,
			validation.Length(6, 72),
		),
		validation.Field(
			&r.Role,
			validation.In(RoleUser, RoleAdmin),
		),
	)
}

func (c *UsersHTTPController) Update(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.handleError(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid user id"))
	}

	payload := new(UpdateUserRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid request payload"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": err.Error(),
		})
	}

	params := UpdateUserParams{}
	if payload.Username != "" {
		params.Username = &payload.Username
	}
	if payload.Role != "" {
		role := UserRole(payload.Role)
		params.Role = &role
	}
	if payload.Password != "" {
		if payload.Password != payload.ConfirmPassword {
			return c.handleError(ctx, ErrPasswordMismatch)
		}
		hash, err := HashPassword(payload.Password)
		if err != nil {
			return c.handleError(ctx, err)
		}
		params.PasswordHash = &hash
	}

	record, err := c.users.Update(ctx.Context(), id, params)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.handleError(ctx, ErrUserNotFound)
		}
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, record)
}

func (c *UsersHTTPController) Delete(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.handleError(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid user id"))
	}

	if err := c.users.Delete(ctx.Context(), id); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]bool{
		"success": true,
	})
}

func (c *UsersHTTPController) handleError(ctx router.Context, err error) error {
	return writeError(ctx, c.logger, err)
}

func queryInt(ctx router.Context, key string, def int) int {
	raw := ctx.Query(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 1 {
		return def
	}
	return val
}
