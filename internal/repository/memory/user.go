package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/repository"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(_ context.Context, user *model.User, passwordHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, row := range r.db.users {
		if strings.EqualFold(row.user.Username, user.Username) {
			return fmt.Errorf("failed to create user %q: %w", user.Username, repository.ErrDuplicate)
		}
	}

	r.db.nextUser++
	user.ID = r.db.nextUser
	user.CreatedAt = r.db.stamp()
	r.db.users[user.ID] = &userRow{user: *user, hash: passwordHash}
	return nil
}

func (r *userRepository) Get(_ context.Context, id int64) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := row.user
	return &u, nil
}

func (r *userRepository) GetCredentials(_ context.Context, username string) (*model.User, string, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, row := range r.db.users {
		if strings.EqualFold(row.user.Username, username) {
			u := row.user
			return &u, row.hash, nil
		}
	}
	return nil, "", repository.ErrNotFound
}

func (r *userRepository) Update(_ context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.db.users {
		if id != user.ID && strings.EqualFold(other.user.Username, user.Username) {
			return fmt.Errorf("failed to rename user to %q: %w", user.Username, repository.ErrDuplicate)
		}
	}
	row.user.Username = user.Username
	row.user.Type = user.Type
	*user = row.user
	return nil
}

func (r *userRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.users, id)
	return nil
}

func (r *userRepository) List(_ context.Context, filter model.UserFilter) ([]*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := make([]*model.User, 0, len(r.db.users))
	for _, row := range r.db.users {
		if filter.Role != "" && row.user.Type != filter.Role {
			continue
		}
		u := row.user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
