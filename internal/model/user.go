package model

// User represents a staff account. The password is write-only and never decoded.
type User struct {
	Base
	Username string `json:"username" db:"username"`
	Type     Role   `json:"type" db:"type"`
}

// CreateUserRequest represents user creation parameters
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Type     Role   `json:"type" validate:"required,oneof=rh medecin admin"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest represents user update parameters
type UpdateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Type     Role   `json:"type" validate:"required,oneof=rh medecin admin"`
}

// UserFilter narrows user listings; an empty filter returns everyone.
type UserFilter struct {
	Role Role `json:"role" form:"role"`
}
