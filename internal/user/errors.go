package user

import "errors"

// Validation failures. The messages are shown to the operator as-is.
var (
	ErrPasswordMismatch = errors.New("Passwords do not match.")
	ErrSexRequired      = errors.New("Sex is required.")
	ErrEmailRequired    = errors.New("Email is required.")
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters.")
	ErrInvalidRole      = errors.New("Invalid role.")
	ErrInvalidSex       = errors.New("Invalid sex.")
	ErrInvalidStatus    = errors.New("Invalid status.")
)

// Resource and state failures
var (
	ErrNotFound          = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already exists")
	ErrEmployeeIDTaken   = errors.New("employee id already exists")
	ErrDuplicate         = errors.New("email or employee id already exists")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrConcurrentChange  = errors.New("user was modified concurrently, reload and retry")
	ErrHasRecords        = errors.New("user still owns projects or documents")
	ErrProtected         = errors.New("the highest-privilege account cannot be modified")
	ErrSelfAction        = errors.New("you cannot deactivate or delete your own account")
	ErrRoleAboveActor    = errors.New("cannot assign a role above your own")
)
