// Package dataset loads and holds the injury, product, and population tables.
package dataset

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by LoadError.
var (
	ErrMalformedDate  = errors.New("malformed date")
	ErrMalformedValue = errors.New("malformed value")
	ErrMissingColumn  = errors.New("missing column")
	ErrDuplicateKey   = errors.New("duplicate key")
)

// LoadError describes a row or header that failed schema checks.
type LoadError struct {
	File   string
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s: column %s: %v", loc, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
