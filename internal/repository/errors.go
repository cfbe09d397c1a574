package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist. Implementations
// translate their driver's no-rows error into it so callers never depend on the
// storage technology.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a ticket update loses the per-ticket
// read-modify-write race (the optimistic version check failed). The caller
// decides retry policy.
var ErrConflict = errors.New("write conflict")
