package screen

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vitemonmedoc/medoc/internal/alert"
	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/mutation"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
	"github.com/vitemonmedoc/medoc/pkg/logger"
	"github.com/vitemonmedoc/medoc/pkg/validator"
)

// UserSource is the Users resource as the admin screen uses it.
type UserSource interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) error
	DeleteUser(ctx context.Context, id int64) error
}

type UsersState struct {
	Loading bool
	Users   []model.User
	Error   *alert.Alert
}

// AdminUsers is the account management screen.
type AdminUsers struct {
	src      UserSource
	validate validator.Validator
	log      *logger.Logger

	mu      sync.Mutex
	loading bool
	users   []model.User
	err     *alert.Alert

	write mutation.Tracker
}

func NewAdminUsers(src UserSource, log *logger.Logger) *AdminUsers {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminUsers{
		src:      src,
		validate: validator.New(),
		loading:  true,
		log:      log.WithComponent("admin_users"),
	}
}

func (a *AdminUsers) State() UsersState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return UsersState{Loading: a.loading, Users: append([]model.User(nil), a.users...), Error: a.err}
}

// Busy reports whether a write is in flight.
func (a *AdminUsers) Busy() bool {
	return a.write.Busy()
}

func (a *AdminUsers) Load(ctx context.Context) error {
	a.mu.Lock()
	a.loading = true
	a.err = nil
	a.mu.Unlock()

	users, err := a.src.ListUsers(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = false
	if err != nil {
		al := alert.Failure(alert.LoadUsers, err)
		a.err = &al
		a.users = nil
		return err
	}
	a.users = users
	return nil
}

// Add creates an account. Every field is required; nothing is sent otherwise.
func (a *AdminUsers) Add(ctx context.Context, req model.CreateUserRequest) (alert.Alert, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" || req.Type == "" {
		return alert.MissingFields(), apperrors.NewValidation("all fields are required", nil)
	}
	if err := a.validate.Validate(req); err != nil {
		return alert.Failure(alert.AddUser, err), apperrors.NewValidation(err.Error(), err)
	}

	err := a.write.Run(ctx, func(ctx context.Context) error {
		_, err := a.src.CreateUser(ctx, req)
		return err
	})
	if err != nil {
		a.log.Warn("create user failed", "username", req.Username, "error", err.Error())
		return alert.Failure(alert.AddUser, err), err
	}
	_ = a.Load(ctx)
	return alert.Success(alert.AddUser, req.Username), nil
}

// Edit changes username and type. Passwords are not editable here.
func (a *AdminUsers) Edit(ctx context.Context, id int64, req model.UpdateUserRequest) (alert.Alert, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Type == "" {
		return alert.MissingFields(), apperrors.NewValidation("username and type are required", nil)
	}
	if err := a.validate.Validate(req); err != nil {
		return alert.Failure(alert.EditUser, err), apperrors.NewValidation(err.Error(), err)
	}

	err := a.write.Run(ctx, func(ctx context.Context) error {
		return a.src.UpdateUser(ctx, id, req)
	})
	if err != nil {
		return alert.Failure(alert.EditUser, err), err
	}
	_ = a.Load(ctx)
	return alert.Success(alert.EditUser, req.Username), nil
}

// Delete is a hard, immediate delete.
func (a *AdminUsers) Delete(ctx context.Context, u model.User) (alert.Alert, error) {
	err := a.write.Run(ctx, func(ctx context.Context) error {
		return a.src.DeleteUser(ctx, u.ID)
	})
	if err != nil {
		return alert.Failure(alert.DeleteUser, err), err
	}
	_ = a.Load(ctx)
	return alert.Success(alert.DeleteUser, u.Username), nil
}

// FormatCreatedAt renders an account's creation time as "dd/mm/yyyy à HH:MM".
func FormatCreatedAt(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotProvided
	}
	return t.Local().Format("02/01/2006 à 15:04")
}
