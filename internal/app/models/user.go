package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	Username     string    `json:"username" db:"username" example:"jdoe"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"fullName" db:"full_name" example:"John Doe"`
	Role         RoleType  `json:"role" db:"role" example:"Student"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// IsInstructor reports whether the user holds the Instructor role.
func (u *User) IsInstructor() bool {
	return u != nil && u.Role == RoleInstructor
}
