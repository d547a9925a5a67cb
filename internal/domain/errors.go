package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrSessionConflict = errors.New("session was modified concurrently")
)
