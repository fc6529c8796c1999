package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoStub = NewStubUserRepo()

var service Service

func setup(t *testing.T) func() {
	service = NewUserService(repoStub)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func TestServiceImpl_CreateUser(t *testing.T) {
	t.Run("should create a user with generated uid and default currency", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.CreateUser(context.Background(), User{Username: "maria", DisplayName: "Maria"})

		// then
		require.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.NotEmpty(t, created.Uid)
		assert.Equal(t, "USD", created.Currency)
	})

	t.Run("should keep an explicit currency", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.CreateUser(context.Background(), User{Username: "maria", Currency: "EUR"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "EUR", created.Currency)
	})

	t.Run("should reject an empty username", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.CreateUser(context.Background(), User{Username: "  "})

		// then
		assert.Error(t, err)
	})
}

func TestServiceImpl_GetUserByUid(t *testing.T) {
	t.Run("should find a created user by uid", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateUser(context.Background(), User{Username: "maria"})
		require.NoError(t, err)

		// when
		found, err := service.GetUserByUid(context.Background(), created.Uid)

		// then
		require.NoError(t, err)
		assert.Equal(t, created.Id, found.Id)
	})

	t.Run("should return ErrUserNotFound for an unknown uid", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.GetUserByUid(context.Background(), "missing")

		// then
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestServiceImpl_GetCurrentUser(t *testing.T) {
	t.Run("should return the user carried by the context", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		ctx := WithUser(context.Background(), User{Id: 7, Username: "maria"})

		// when
		current, err := service.GetCurrentUser(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, 7, current.Id)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.GetCurrentUser(context.Background())

		// then
		assert.ErrorIs(t, err, ErrNoUser)
	})
}
