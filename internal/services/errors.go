package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/task-manager-api/internal/constants"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")

	ErrUsernameTaken    = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already exists")
	ErrDuplicateAccount = errors.New("username or email already exists")
	ErrInvalidUsername  = fmt.Errorf("username must be between %d and %d characters", constants.MinUsernameLength, constants.MaxUsernameLength)
	ErrInvalidEmail     = errors.New("email must be a valid email address")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", constants.MinPasswordLength)
	ErrFailedToHash     = errors.New("failed to hash password")
	ErrTitleRequired    = errors.New("title is required")
	ErrStatusRequired   = errors.New("status cannot be empty")
	ErrOwnerRequired    = errors.New("owner_id cannot be null")
)
