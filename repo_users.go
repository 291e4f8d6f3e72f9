package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var updatePasswordDigestSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?
RETURNING *;`

// ListUsersQuery filters and paginates the user listing. Username matches as
// a case-insensitive substring. Page is 1-based.
type ListUsersQuery struct {
	Username string
	Role     UserRole
	Page     int
	PageSize int
}

// UpdateUserParams carries the optional fields an admin can change. Nil
// means leave as is.
type UpdateUserParams struct {
	Username     *string
	PasswordHash *string
	Role         *UserRole
}

// Users is the full user persistence surface: the UserStore capability the
// auth core consumes plus the management operations the admin CRUD routes
// need.
type Users interface {
	UserStore

	List(ctx context.Context, query ListUsersQuery) ([]*User, int, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateUserParams) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	EnsureDefaultAdmin(ctx context.Context, username, passwordHash string) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users     = (*users)(nil)
	_ UserStore = (*users)(nil)
)

// NewUsersRepository returns a bun-backed Users store
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.findOne(ctx, "id", id)
}

func (a *users) FindByUsername(ctx context.Context, username string) (*User, error) {
	return a.findOne(ctx, "username", strings.TrimSpace(username))
}

func (a *users) findOne(ctx context.Context, column string, value any) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: fmt.Sprint(value),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, a.db, record)
}

func (a *users) UpdatePasswordDigest(ctx context.Context, id uuid.UUID, digest string) error {
	res, err := a.Repository.RawTx(ctx, a.db, updatePasswordDigestSQL, digest, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *users) List(ctx context.Context, query ListUsersQuery) ([]*User, int, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 10
	}

	var records []*User
	q := a.db.NewSelect().Model(&records)

	if query.Username != "" {
		q = q.Where("?TableAlias.username LIKE ?", "%"+query.Username+"%")
	}
	if query.Role != "" {
		q = q.Where("?TableAlias.user_role = ?", query.Role)
	}

	total, err := q.
		Order("created_at ASC").
		Limit(query.PageSize).
		Offset((query.Page - 1) * query.PageSize).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (a *users) Update(ctx context.Context, id uuid.UUID, params UpdateUserParams) (*User, error) {
	user, err := a.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.Role != nil {
		user.Role = *params.Role
	}

	return a.Repository.UpdateTx(ctx, a.db, user, repository.UpdateByID(user.ID.String()))
}

func (a *users) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}

// EnsureDefaultAdmin seeds an admin account when the users table is empty,
// so a fresh deployment is reachable. No-op otherwise.
func (a *users) EnsureDefaultAdmin(ctx context.Context, username, passwordHash string) error {
	count, err := a.db.NewSelect().Model((*User)(nil)).Count(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	_, err = a.Create(ctx, &User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         RoleAdmin,
	})
	return err
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Role == "" {
		record.Role = RoleUser
	}
}
