package common

import "errors"

// Domain errors. All are recoverable, user-facing conditions; handlers
// map them to a flash notice plus redirect, or a JSON failure body on
// the stock endpoints.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUnknownUser        = errors.New("username does not exist")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrProfileMissing     = errors.New("user profile not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrProductNotFound    = errors.New("product not found")
	ErrValidationFailed   = errors.New("validation failed")
)
