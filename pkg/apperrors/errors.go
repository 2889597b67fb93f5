package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrValidation classifies input that was rejected before or during a
	// transaction. Nothing is committed when it is returned.
	ErrValidation = errors.New("validation failed")

	// ErrStore classifies failures reported by the record store.
	ErrStore = errors.New("store failure")

	// ErrParse classifies malformed instrument log payloads.
	ErrParse = errors.New("parse failure")

	ErrInvalidPayload = fmt.Errorf("%w: payload must be a JSON object", ErrValidation)
)

// UnknownFieldError is returned when a partial update names a column that is
// not in the entity's whitelist.
type UnknownFieldError struct {
	Entity string
	Name   string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown %s field %q", e.Entity, e.Name)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrValidation }

// InvalidValueError is returned when a whitelisted field carries a value of
// the wrong type.
type InvalidValueError struct {
	Name  string
	Value string
	Err   error
}

func (e *InvalidValueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid value for %s: %s (%v)", e.Name, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid value for %s: %s", e.Name, e.Value)
}

func (e *InvalidValueError) Is(target error) bool { return target == ErrValidation }

func (e *InvalidValueError) Unwrap() error { return e.Err }

// NegativeQuantityError is returned when a sample set delta has qty < 0.
type NegativeQuantityError struct {
	SampleTypeID int64
	Qty          int64
}

func (e *NegativeQuantityError) Error() string {
	return fmt.Sprintf("negative quantity %d for sample type %d", e.Qty, e.SampleTypeID)
}

func (e *NegativeQuantityError) Is(target error) bool { return target == ErrValidation }

// TaskMismatchError is returned when a sensor record in a batch belongs to a
// different task than the one the batch was issued for.
type TaskMismatchError struct {
	Index    int
	Expected int64
	Got      int64
}

func (e *TaskMismatchError) Error() string {
	return fmt.Sprintf("record %d belongs to task %d, batch is for task %d", e.Index, e.Got, e.Expected)
}

func (e *TaskMismatchError) Is(target error) bool { return target == ErrValidation }

// UnsupportedFormatError is returned when an uploaded file name does not carry
// one of the recognised log extensions.
type UnsupportedFormatError struct {
	FileName string
	Tag      string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("unsupported log format: %q has no extension", e.FileName)
	}
	return fmt.Sprintf("unsupported log format %q", e.Tag)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrValidation }

// MissingChannelError is returned when a reading or record lacks the
// timestamp or a channel the sensor_data table requires.
type MissingChannelError struct {
	Index   int
	Channel string
}

func (e *MissingChannelError) Error() string {
	return fmt.Sprintf("record %d has no value for required field %s", e.Index, e.Channel)
}

func (e *MissingChannelError) Is(target error) bool { return target == ErrValidation }

// ReferenceError is returned when a write points at a row that does not exist
// (foreign key violation).
type ReferenceError struct {
	Constraint string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("referenced row does not exist (%s)", e.Constraint)
}

func (e *ReferenceError) Is(target error) bool { return target == ErrValidation }

// StoreError wraps a failure reported by the database driver.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Is(target error) bool { return target == ErrStore }

func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err as a StoreError for op. It returns nil for a nil error.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
