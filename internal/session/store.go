// Package session holds who is logged in. The Store is created once at the
// application root and handed to every screen; Restore, Login and Logout are
// its only mutators.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vitemonmedoc/medoc/internal/model"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
	"github.com/vitemonmedoc/medoc/pkg/logger"
)

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (*model.Session, error)
}

// Guard outcomes
var (
	ErrLoading         = errors.New("session is still loading")
	ErrUnauthenticated = errors.New("not logged in")
	ErrRoleMismatch    = errors.New("role not allowed on this screen")
)

type Store struct {
	mu      sync.RWMutex
	current *model.Session
	loading bool

	storage Storage
	auth    Authenticator
	log     *logger.Logger
}

func NewStore(storage Storage, auth Authenticator, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		loading: true,
		storage: storage,
		auth:    auth,
		log:     log.WithComponent("session"),
	}
}

// Restore reads the persisted session. It never fails: an unreadable record
// leaves the store unauthenticated. loading is false once it returns.
func (s *Store) Restore(ctx context.Context) {
	restored, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn("could not restore session", "error", err.Error())
		restored = nil
	}

	s.mu.Lock()
	s.current = restored
	s.loading = false
	s.mu.Unlock()
}

// Loading reports whether Restore has not completed yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Current returns a copy of the session, or nil when logged out.
func (s *Store) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Token returns the bearer token of the current session.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.Token == "" {
		return "", false
	}
	return s.current.Token, true
}

// Login authenticates and, on success only, replaces and persists the session.
func (s *Store) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, apperrors.NewValidation("username and password are required", model.ErrInvalidCredentials)
	}

	sess, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if sess.User.Username == "" {
		sess.User.Username = creds.Username
	}

	if err := s.storage.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.current = sess
	s.loading = false
	s.mu.Unlock()

	s.log.Info("logged in", "username", sess.User.Username, "role", string(sess.User.Type))
	cp := *sess
	return &cp, nil
}

// Logout clears the session in memory and in storage. The in-memory session is
// dropped even if storage fails, so the caller is never left logged in locally.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.storage.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Require is the mount-time check every role-gated screen runs. It reports
// ErrLoading before looking at the user.
func (s *Store) Require(roles ...model.Role) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.loading {
		return nil, ErrLoading
	}
	if s.current == nil {
		return nil, ErrUnauthenticated
	}
	if len(roles) == 0 {
		cp := *s.current
		return &cp, nil
	}
	for _, r := range roles {
		if s.current.User.Type == r {
			cp := *s.current
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRoleMismatch, s.current.User.Type)
}
