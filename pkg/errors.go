package magnify

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps one of them.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNotFound          = errors.New("not found")
	ErrOutOfRange        = errors.New("out of range")
)

// ErrInvalid represents malformed or empty numeric input.
type ErrInvalid struct {
	What   string
	Reason string
}

func (e *ErrInvalid) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.What, e.Reason)
}

func (e *ErrInvalid) Unwrap() error {
	return ErrInvalidArgument
}

// ErrDimension represents incompatible source and destination geometry.
type ErrDimension struct {
	What     string
	Expected string
	Actual   string
}

func (e *ErrDimension) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.What, e.Expected, e.Actual)
}

func (e *ErrDimension) Unwrap() error {
	return ErrDimensionMismatch
}

// ErrMissingTag represents a tag absent from a grid source.
type ErrMissingTag struct {
	Tag string
	Err error
}

func (e *ErrMissingTag) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tag %q not found: %v", e.Tag, e.Err)
	}
	return fmt.Sprintf("tag %q not found", e.Tag)
}

func (e *ErrMissingTag) Unwrap() error {
	return ErrNotFound
}

// ErrOutOfAxis represents a channel id or tick outside a grid's extent.
type ErrOutOfAxis struct {
	What string
	ID   int
	Axis Axis
}

func (e *ErrOutOfAxis) Error() string {
	return fmt.Sprintf("%s %d outside axis %v", e.What, e.ID, e.Axis)
}

func (e *ErrOutOfAxis) Unwrap() error {
	return ErrOutOfRange
}
