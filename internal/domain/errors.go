package domain

import "errors"

var (
	ErrDuplicateEmail      = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrMissingToken        = errors.New("no token provided")
	ErrInvalidToken        = errors.New("invalid token")
	ErrNotFound            = errors.New("user not found")
	ErrUnsupportedDatabase = errors.New("unsupported database driver")
)
