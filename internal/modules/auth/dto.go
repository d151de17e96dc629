package auth

import "time"

type SignupRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=20"`
	Password string   `json:"password" validate:"required,min=6,max=40"`
	Roles    []string `json:"roles,omitempty"`
}

type SigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenResponse struct {
	Token    string   `json:"token"`
	Type     string   `json:"type"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}
