package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/repository"
	"github.com/vitemonmedoc/medoc/pkg/auth"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
	"github.com/vitemonmedoc/medoc/pkg/logger"
	"github.com/vitemonmedoc/medoc/pkg/security"
)

const (
	msgInvalidCredentials = "Nom d'utilisateur ou mot de passe incorrect."
	msgInvalidToken       = "Token invalide ou expiré"
)

type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	tokens auth.JWTService
	log    *logger.Logger
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, tokens auth.JWTService, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log.WithComponent("auth_service"),
	}
}

// Login checks the credentials and issues a bearer token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return nil, apperrors.NewValidation("Tous les champs doivent être remplis.", model.ErrInvalidCredentials)
	}

	user, hash, err := s.users.GetCredentials(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Info("login rejected", "username", username, "reason", "unknown user")
		return nil, apperrors.NewUnauthorized(msgInvalidCredentials, model.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	if err := s.hasher.Compare(hash, creds.Password); err != nil {
		s.log.Info("login rejected", "username", username, "reason", "password mismatch")
		return nil, apperrors.NewUnauthorized(msgInvalidCredentials, model.ErrInvalidCredentials)
	}

	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Info("login", "user_id", user.ID, "type", string(user.Type))
	return &model.Session{
		Token: token,
		User: model.SessionUser{
			ID:       user.ID,
			Username: user.Username,
			Type:     user.Type,
		},
	}, nil
}

// Authenticate resolves a bearer token to its claims.
func (s *Service) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized(msgInvalidToken, err)
	}
	return claims, nil
}
