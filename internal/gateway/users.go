package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vitemonmedoc/medoc/internal/model"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
)

// Login posts credentials. Anything other than a 200 carrying a token is an error.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	resp, err := c.send(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   "/api/users/login",
		body:   creds,
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		appErr := apperrors.NewServer(resp.status, serverMessage(resp.body))
		if resp.status >= 400 && resp.status < 500 {
			appErr.Code = apperrors.ErrUnauthorized
			appErr.Err = model.ErrInvalidCredentials
		}
		return nil, appErr
	}

	var session model.Session
	if err := json.Unmarshal(resp.body, &session); err != nil {
		return nil, apperrors.NewDecode(fmt.Errorf("login: %w", err))
	}
	if session.Token == "" {
		return nil, apperrors.NewDecode(fmt.Errorf("login: response carries no token"))
	}
	return &session, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, request{op: "list_users", method: http.MethodGet, path: "/api/users"}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListDoctors asks the server for medecin accounts and drops anything else it
// returns, since not every API version honours the role filter.
func (c *Client) ListDoctors(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := c.do(ctx, request{
		op:     "list_doctors",
		method: http.MethodGet,
		path:   "/api/users",
		query:  url.Values{"role": []string{string(model.RoleDoctor)}},
	}, &users)
	if err != nil {
		return nil, err
	}

	doctors := users[:0]
	for _, u := range users {
		if u.Type == model.RoleDoctor {
			doctors = append(doctors, u)
		}
	}
	return doctors, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := c.do(ctx, request{op: "get_user", method: http.MethodGet, path: fmt.Sprintf("/api/users/%d", id)}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	resp, err := c.send(ctx, request{op: "create_user", method: http.MethodPost, path: "/api/users", body: req})
	if err != nil {
		return nil, err
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, apperrors.NewServer(resp.status, serverMessage(resp.body))
	}
	var user model.User
	if !decodeOptional(resp.body, &user) {
		return nil, nil
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) error {
	return c.do(ctx, request{op: "update_user", method: http.MethodPut, path: fmt.Sprintf("/api/users/%d", id), body: req}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, request{op: "delete_user", method: http.MethodDelete, path: fmt.Sprintf("/api/users/%d", id)}, nil)
}

// decodeOptional decodes a mutation's echo body when the server sends one.
// A successful mutation is never failed over an unexpected body.
func decodeOptional(body []byte, out interface{}) bool {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return false
	}
	return json.Unmarshal(body, out) == nil
}
