package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledgerbuddy/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrInvalidRecord = errors.New("invalid record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecord validates a record before it is persisted.
func validateRecord(rec *model.Record) error {
	if rec.Fingerprint == "" {
		return fmt.Errorf("%w: missing fingerprint", ErrInvalidRecord)
	}
	if rec.Amount <= 0 {
		return fmt.Errorf("%w: non-positive amount", ErrInvalidRecord)
	}
	if !rec.Direction.Valid() {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidRecord, rec.Direction)
	}
	if !rec.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRecord, rec.Category)
	}
	if rec.Timestamp <= 0 {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidRecord)
	}
	if rec.Date == "" {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	return nil
}
