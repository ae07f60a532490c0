package models

import (
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation error")
	ErrUniqueViolation = errors.New("unique violation")

	ErrDocumentExists = errors.New("document already exists")
	ErrEmptyDocument  = errors.New("document body is empty")
)
