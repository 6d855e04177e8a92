package repository

import "errors"

// Common repository errors
var (
	// ErrBoardNotFound is returned when a board is not found
	ErrBoardNotFound = errors.New("board not found")

	// ErrListNotFound is returned when a list is not found or does not
	// belong to the stated board
	ErrListNotFound = errors.New("list not found")

	// ErrTaskNotFound is returned when a task is not found or does not
	// belong to the stated board
	ErrTaskNotFound = errors.New("task not found")
)
