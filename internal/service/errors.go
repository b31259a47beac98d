// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrTaskNotFound         = errors.New("task not found")
	ErrInvalidTask          = errors.New("invalid task")
	ErrInvalidGeneratedTask = errors.New("generated task data is invalid")
	ErrUserExists           = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
)

// Input errors. Each matches ErrInvalidInput.
var (
	ErrInvalidMessage      = fmt.Errorf("%w: message must be a non-empty string", ErrInvalidInput)
	ErrTaskIDRequired      = fmt.Errorf("%w: task id is required", ErrInvalidInput)
	ErrInstructionRequired = fmt.Errorf("%w: update instruction is required", ErrInvalidInput)
	ErrMissingCredentials  = fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
)
