package services

import "errors"

// Sentinel errors services return so handlers can map them to HTTP
// statuses with errors.Is instead of string matching. Services wrap
// these with context via fmt.Errorf("...: %w", Err...).
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid input")
)
