package domain

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")

	// ErrSlugTaken is returned by stores when a slug unique index rejects a write.
	ErrSlugTaken = errors.New("slug already taken")
)
