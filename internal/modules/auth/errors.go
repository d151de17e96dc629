package auth

import "errors"

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRoleNotFound       = errors.New("role not found")
)
