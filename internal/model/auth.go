package model

import (
	"errors"
)

// Credentials is the login request body
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionUser is the user summary returned by the login endpoint.
type SessionUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Type     Role   `json:"type"`
}

// Session is both the login response and the persisted session record.
type Session struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)
