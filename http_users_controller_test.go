package auth_test

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-session-auth"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUsersController(t *testing.T) (*auth.UsersHTTPController, auth.Users) {
	t.Helper()

	repo := setupUsersRepo(t)
	guard := auth.NewGuard(new(MockAuthenticator), repo)
	return auth.NewUsersHTTPController(repo, guard), repo
}

func TestUsersHTTPController_List(t *testing.T) {
	ctx := context.Background()
	controller, repo := newUsersController(t)

	seedUser(t, repo, "alice", auth.RoleUser)
	seedUser(t, repo, "alicia", auth.RoleUser)
	seedUser(t, repo, "bob", auth.RoleAdmin)

	listWith := func(t *testing.T, queries map[string]string) map[string]any {
		t.Helper()

		mockCtx := router.NewMockContext()
		mockCtx.On("Context").Return(ctx)
		for key, val := range queries {
			mockCtx.QueriesM[key] = val
		}

		var body map[string]any
		mockCtx.On("JSON", http.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(map[string]any)
		}).Return(nil)

		require.NoError(t, controller.List(mockCtx))
		return body
	}

	t.Run("returns every user with the total", func(t *testing.T) {
		body := listWith(t, nil)
		assert.Equal(t, 3, body["total"])
		assert.Len(t, body["data"], 3)
	})

	t.Run("applies the role filter", func(t *testing.T) {
		body := listWith(t, map[string]string{"role": "admin"})
		assert.Equal(t, 1, body["total"])
	})

	t.Run("applies the username filter", func(t *testing.T) {
		body := listWith(t, map[string]string{"username": "alic"})
		assert.Equal(t, 2, body["total"])
	})

	t.Run("paginates", func(t *testing.T) {
		body := listWith(t, map[string]string{"current": "2", "page_size": "2"})
		assert.Equal(t, 3, body["total"])
		assert.Len(t, body["data"], 1)
	})
}

func TestUsersHTTPController_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates the record", func(t *testing.T) {
		controller, repo := newUsersController(t)
		user := seedUser(t, repo, "alice", auth.RoleUser)

		mockCtx := router.NewMockContext()
		mockCtx.On("Context").Return(ctx)
		mockCtx.ParamsM["id"] = user.ID.String()
		mockCtx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
			*args.Get(0).(*auth.UpdateUserRequest) = auth.UpdateUserRequest{
				Username: "renamed",
				Role:     auth.RoleAdmin,
			}
		}).Return(nil)

		var record *auth.User
		mockCtx.On("JSON", http.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			record = args.Get(1).(*auth.User)
		}).Return(nil)

		require.NoError(t, controller.Update(mockCtx))
		require.NotNil(t, record)
		assert.Equal(t, "renamed", record.Username)
		assert.Equal(t, auth.RoleAdmin, record.Role)

		stored, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", stored.Username)
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		controller, _ := newUsersController(t)

		mockCtx := router.NewMockContext()
		mockCtx.ParamsM["id"] = "not-a-uuid"

		var body map[string]string
		mockCtx.On("JSON", http.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(map[string]string)
		}).Return(nil)

		require.NoError(t, controller.Update(mockCtx))
		assert.Equal(t, "invalid user id", body["error"])
	})

	t.Run("rejects password confirmation mismatch", func(t *testing.T) {
		controller, repo := newUsersController(t)
		user := seedUser(t, repo, "alice", auth.RoleUser)

		mockCtx := router.NewMockContext()
		mockCtx.ParamsM["id"] = user.ID.String()
		mockCtx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
			*args.Get(0).(*auth.UpdateUserRequest) = auth.UpdateUserRequest{
				Password:        "secret2",
				ConfirmPassword: "secret3",
			}
		}).Return(nil)

		var body map[string]string
		mockCtx.On("JSON", http.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(map[string]string)
		}).Return(nil)

		require.NoError(t, controller.Update(mockCtx))
		assert.Equal(t, "PASSWORD_MISMATCH", body["code"])
	})

	t.Run("missing user renders not found", func(t *testing.T) {
		controller, _ := newUsersController(t)

		mockCtx := router.NewMockContext()
		mockCtx.On("Context").Return(ctx)
		mockCtx.ParamsM["id"] = uuid.NewString()
		mockCtx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
			*args.Get(0).(*auth.UpdateUserRequest) = auth.UpdateUserRequest{
				Username: "renamed",
			}
		}).Return(nil)

		var body map[string]string
		mockCtx.On("JSON", http.StatusNotFound, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(map[string]string)
		}).Return(nil)

		require.NoError(t, controller.Update(mockCtx))
		assert.Equal(t, "USER_NOT_FOUND", body["code"])
	})
}

func TestUsersHTTPController_Delete(t *testing.T) {
	ctx := context.Background()
	controller, repo := newUsersController(t)
	user := seedUser(t, repo, "alice", auth.RoleUser)

	mockCtx := router.NewMockContext()
	mockCtx.On("Context").Return(ctx)
	mockCtx.ParamsM["id"] = user.ID.String()

	var body map[string]bool
	mockCtx.On("JSON", http.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]bool)
	}).Return(nil)

	require.NoError(t, controller.Delete(mockCtx))
	assert.True(t, body["success"])

	_, err := repo.FindByID(ctx, user.ID)
	assert.True(t, goerrors.IsNotFound(err))
}
