package dto

import "github.com/yigit/edumanage/internal/app/models"

// UserResponse is the public view of a user; the password hash never leaves the service.
type UserResponse struct {
	UserID   int64  `json:"userId" example:"1"`
	UserName string `json:"userName" example:"jdoe"`
	FullName string `json:"fullName" example:"Jane Doe"`
	Role     string `json:"role" example:"Student"`
}

// NewUserResponse maps a user model to its public view
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		UserID:   u.ID,
		UserName: u.Username,
		FullName: u.FullName,
		Role:     string(u.Role),
	}
}

// NewUserResponses maps a slice of users
func NewUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
