package model

import (
	"fmt"
	"strings"
)

// Role is the staff account type carried by users and sessions.
type Role string

// Role values as exchanged with the API
const (
	RoleHR     Role = "rh"
	RoleDoctor Role = "medecin"
	RoleAdmin  Role = "admin"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleHR, RoleDoctor, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleHR, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// Label is the French display name.
func (r Role) Label() string {
	switch r {
	case RoleHR:
		return "RH"
	case RoleDoctor:
		return "Médecin"
	case RoleAdmin:
		return "Admin"
	}
	return string(r)
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
