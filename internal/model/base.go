package model

import (
	"time"
)

// Base contains the server-assigned fields shared by users and patients
type Base struct {
	ID        int64      `json:"id" db:"id"`
	CreatedAt *time.Time `json:"created_at,omitempty" db:"created_at"`
}
