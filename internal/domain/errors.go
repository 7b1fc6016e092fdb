package domain

import "errors"

var (
	// ErrSessionExists indicates a session id has already been ingested
	ErrSessionExists = errors.New("session already exists")
	// ErrCredentialsNotFound indicates no wiki credentials stored for a session
	ErrCredentialsNotFound = errors.New("wiki credentials not found")
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
)
