package errors

import "errors"

// Link/account errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not linked")
	ErrAlreadyLinked      = errors.New("account already linked")
)

// Store errors.
var (
	ErrTokenSealed = errors.New("stored token cannot be opened with this secret")
)
