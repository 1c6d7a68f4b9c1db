package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/repository"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
	"github.com/vitemonmedoc/medoc/pkg/logger"
	"github.com/vitemonmedoc/medoc/pkg/security"
	"github.com/vitemonmedoc/medoc/pkg/validator"
)

type UserServicer interface {
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, error)
}

type Service struct {
	repo     repository.UserRepository
	hasher   security.PasswordHasher
	validate validator.Validator
	log      *logger.Logger
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		hasher:   hasher,
		validate: validator.New(),
		log:      log.WithComponent("user_service"),
	}
}

func (s *Service) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Validate(req); err != nil {
		return nil, apperrors.NewValidation(err.Error(), err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.NewValidation(err.Error(), err)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Username: req.Username, Type: req.Type}
	if err := s.repo.Create(ctx, user, hash); err != nil {
		return nil, conflictOr(err, "failed to create user")
	}

	s.log.Info("user created", "user_id", user.ID, "type", string(user.Type))
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Validate(req); err != nil {
		return nil, apperrors.NewValidation(err.Error(), err)
	}

	user := &model.User{Base: model.Base{ID: id}, Username: req.Username, Type: req.Type}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, conflictOr(err, fmt.Sprintf("failed to update user %d", id))
	}

	s.log.Info("user updated", "user_id", id)
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	s.log.Info("user deleted", "user_id", id)
	return nil
}

func (s *Service) ListUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown role %q", filter.Role), nil)
	}
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SeedAdmin creates the bootstrap admin account unless the username is taken.
func (s *Service) SeedAdmin(ctx context.Context, username, password string) error {
	_, _, err := s.repo.GetCredentials(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	_, err = s.CreateUser(ctx, model.CreateUserRequest{
		Username: username,
		Type:     model.RoleAdmin,
		Password: password,
	})
	return err
}

func conflictOr(err error, msg string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict("Nom d'utilisateur déjà utilisé", err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
