// Package apperr defines the sentinel errors shared across the core.
package apperr

import "errors"

var (
	ErrEmptyInput     = errors.New("empty input")
	ErrInvalidBarcode = errors.New("invalid barcode")
	ErrNoCurrentBox   = errors.New("no box is open")
	ErrDuplicateBox   = errors.New("box already exists")
	ErrDuplicateItem  = errors.New("item already exists in box")
	ErrNotFound       = errors.New("not found")
	ErrNoData         = errors.New("nothing to export")
	ErrDecode         = errors.New("malformed snapshot")
)
