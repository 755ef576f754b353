package user

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("not allowed")

	PgUniqueViolation = "23505"
	emailUniqueKey    = "users_email_key"
)
