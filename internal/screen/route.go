// Package screen holds the role-gated screen controllers. Each one takes the
// session store and the gateway it needs at construction and exposes plain
// state; rendering is left to the caller.
package screen

import (
	"context"
	"errors"

	"github.com/vitemonmedoc/medoc/internal/alert"
	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/session"
)

type Screen string

const (
	ScreenLogin  Screen = "Login"
	ScreenHR     Screen = "HRScreen"
	ScreenDoctor Screen = "DoctorScreen"
	ScreenAdmin  Screen = "AdminScreen"
)

var ErrUnknownRole = errors.New("unknown user type")

// RouteFor is the home screen of role.
func RouteFor(role model.Role) (Screen, error) {
	switch role {
	case model.RoleHR:
		return ScreenHR, nil
	case model.RoleDoctor:
		return ScreenDoctor, nil
	case model.RoleAdmin:
		return ScreenAdmin, nil
	}
	return ScreenLogin, ErrUnknownRole
}

// Gate is the outcome of a screen's mount-time check.
type Gate int

const (
	// GateWait means the session is still being restored; render nothing yet.
	GateWait Gate = iota
	GateRedirect
	GateAllow
)

// Sessions is the read side of the session store.
type Sessions interface {
	Require(roles ...model.Role) (*model.Session, error)
}

// Guard runs on mount. It is a point-in-time check: a role change is only
// seen on the next mount.
func Guard(s Sessions, roles ...model.Role) (Gate, *model.Session) {
	sess, err := s.Require(roles...)
	switch {
	case err == nil:
		return GateAllow, sess
	case errors.Is(err, session.ErrLoading):
		return GateWait, nil
	}
	return GateRedirect, nil
}

// Login authenticates and picks the landing screen. An account whose type
// has no screen is logged straight back out.
func Login(ctx context.Context, store *session.Store, creds model.Credentials) (Screen, *alert.Alert) {
	sess, err := store.Login(ctx, creds)
	if err != nil {
		a := alert.Failure(alert.Login, err)
		return ScreenLogin, &a
	}

	next, err := RouteFor(sess.User.Type)
	if err != nil {
		_ = store.Logout(ctx)
		a := alert.UnknownRole()
		return ScreenLogin, &a
	}
	return next, nil
}
