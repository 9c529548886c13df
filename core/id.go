package core

import "github.com/google/uuid"

// NewID returns a fresh UUIDv4 string used for run and history record identifiers.
func NewID() string { return uuid.NewString() }
