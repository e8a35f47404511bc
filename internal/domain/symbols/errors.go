package symbols

import "errors"

var (
	ErrUnknownCategory   = errors.New("unknown category")
	ErrInvalidRow        = errors.New("row must have exactly 8 cells")
	ErrEmptyCatalog      = errors.New("catalog has no categories")
	ErrEmptyCategory     = errors.New("category has no rows")
	ErrUnnamedCategory   = errors.New("category without name")
	ErrDuplicateCategory = errors.New("duplicate category")
)
