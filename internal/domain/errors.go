package domain

import "errors"

var (
	ErrNoCurrentUser      = errors.New("no user is currently logged in")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrMissingFields      = errors.New("all fields are required")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrLoginBlocked       = errors.New("too many failed login attempts")
	ErrNoActiveGame       = errors.New("no active game")
)
