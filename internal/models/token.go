package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access token payload. The resolved access level is
// re-derived on every request; the claim copy exists for client display only.
type JWTClaims struct {
	UserID      string      `json:"user_id"`
	Username    string      `json:"username"`
	AccessLevel AccessLevel `json:"access_level"`
	jwt.RegisteredClaims
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	User      Principal `json:"user"`
}

// RegisterRequest creates a bootstrap account. New accounts start as
// unauthorized viewers until allow-listed or explicitly flagged.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role"`
}
