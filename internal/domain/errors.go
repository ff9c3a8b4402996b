package domain

import "errors"

var (
	// ErrNotFound is returned when a task, conversation or tool does not exist
	// for the caller.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed input, e.g. an empty task title or tool
	// arguments that do not match the tool schema.
	ErrValidation = errors.New("validation error")

	// ErrModelService marks a failed or malformed call to the language model.
	ErrModelService = errors.New("model service error")
)
