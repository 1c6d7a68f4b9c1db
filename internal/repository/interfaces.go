package repository

import (
	"context"
	"errors"

	"github.com/vitemonmedoc/medoc/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// All repository interfaces in one file
type (
	// UserRepository stores staff accounts. Password hashes never leave it
	// except through GetCredentials.
	UserRepository interface {
		Create(ctx context.Context, user *model.User, passwordHash string) error
		Get(ctx context.Context, id int64) (*model.User, error)
		GetCredentials(ctx context.Context, username string) (*model.User, string, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter model.UserFilter) ([]*model.User, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error)
	}
)
