package dto

import "time"

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	UserName     string `json:"userName" binding:"required,notblank,max=100" example:"jdoe"`
	UserPassword string `json:"userPassword" binding:"required,max=72" example:"s3cret"`
	FullName     string `json:"fullName" binding:"required,notblank,max=200" example:"Jane Doe"`
	Role         string `json:"role" binding:"required" example:"Student" enums:"Student,Instructor"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	UserName     string `json:"userName" binding:"required" example:"jdoe"`
	UserPassword string `json:"userPassword" binding:"required" example:"s3cret"`
}

// TokenResponse represents JWT token information. Token is the bearer JWT itself.
type TokenResponse struct {
	Token       string    `json:"token"`
	TokenType   string    `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64     `json:"expiresIn" example:"86400"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// LoginResponse is {user, token, tokenType, expiresIn, expiresAt}; the token
// fields sit beside user, not under it.
type LoginResponse struct {
	User UserResponse `json:"user"`
	TokenResponse
}
