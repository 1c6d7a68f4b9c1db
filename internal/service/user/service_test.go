package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/repository"
	"github.com/vitemonmedoc/medoc/internal/repository/memory"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
	"github.com/vitemonmedoc/medoc/pkg/security"
)

func newService() (*Service, repository.UserRepository) {
	repo := memory.NewUserRepository(memory.NewDB())
	return NewService(repo, security.NewBcryptHasher(bcrypt.MinCost, 0), nil), repo
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, model.CreateUserRequest{Username: " grey ", Type: model.RoleDoctor, Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "grey", u.Username)
	assert.NotZero(t, u.ID)
	assert.NotNil(t, u.CreatedAt)

	_, hash, err := repo.GetCredentials(ctx, "grey")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, model.CreateUserRequest{Username: "x", Type: "nurse", Password: "pw"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "type must be one of [rh medecin admin]")

	_, err = svc.CreateUser(ctx, model.CreateUserRequest{Username: "  ", Type: model.RoleHR, Password: "pw"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCreateUserDuplicate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, model.CreateUserRequest{Username: "grey", Type: model.RoleDoctor, Password: "pw"})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, model.CreateUserRequest{Username: "GREY", Type: model.RoleHR, Password: "pw"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestUpdateDeleteAndList(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	a, err := svc.CreateUser(ctx, model.CreateUserRequest{Username: "a", Type: model.RoleHR, Password: "pw"})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, model.CreateUserRequest{Username: "b", Type: model.RoleDoctor, Password: "pw"})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, a.ID, model.UpdateUserRequest{Username: "alice", Type: model.RoleDoctor})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)

	doctors, err := svc.ListUsers(ctx, model.UserFilter{Role: model.RoleDoctor})
	require.NoError(t, err)
	assert.Len(t, doctors, 2)

	_, err = svc.ListUsers(ctx, model.UserFilter{Role: "nurse"})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	require.NoError(t, svc.DeleteUser(ctx, a.ID))
	_, err = svc.GetUser(ctx, a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteUser(ctx, a.ID), repository.ErrNotFound)

	_, err = svc.UpdateUser(ctx, 999, model.UpdateUserRequest{Username: "z", Type: model.RoleHR})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx, "admin", "admin"))
	require.NoError(t, svc.SeedAdmin(ctx, "admin", "other"))

	admins, err := svc.ListUsers(ctx, model.UserFilter{Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}
