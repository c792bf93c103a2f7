package types

import "errors"

// Domain errors shared across the engine boundary
var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotReady is returned by storage operations before initialization has
	// completed successfully
	ErrNotReady = errors.New("store not initialized")

	// Validation errors for user-triggered mutations
	ErrEmptyID      = errors.New("id cannot be empty")
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrEmptyType    = errors.New("type cannot be empty")
	ErrEmptyCommand = errors.New("command cannot be empty")
)
