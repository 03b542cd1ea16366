package services

import (
	"errors"

	"bookstore/internal/repositories"
)

// ErrNotFound is re-exported so handlers can match missing books, orders and
// users without importing the repositories package.
var ErrNotFound = repositories.ErrNotFound

var (
	// ErrInventoryConflict means at least one line of a checkout could not be
	// reserved; the whole checkout was rolled back.
	ErrInventoryConflict = errors.New("insufficient stock")

	// ErrInvalidTransition means the requested status change is not permitted
	// from the order's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidClaimCode means the presented pickup code does not match the
	// order's stored claim code.
	ErrInvalidClaimCode = errors.New("invalid claim code")

	// ErrClaimCodeExhausted means claim code generation hit its retry cap.
	// This signals the code space is too small for the active order volume.
	ErrClaimCodeExhausted = errors.New("claim code space exhausted")
)
