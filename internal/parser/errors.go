package parser

import (
	"errors"
	"fmt"
)

// Decode failure categories. Use errors.Is to classify a failure returned by Decode.
var (
	// ErrTruncated indicates a read past the end of the subfile or table.
	ErrTruncated = errors.New("truncated")

	// ErrOutOfRange indicates an offset beyond the declared subfile size.
	ErrOutOfRange = errors.New("offset out of range")

	// ErrMalformedHeader indicates a missing signature or an unusable header length.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrMalformedLevelTable indicates an invalid or inconsistent level table.
	ErrMalformedLevelTable = errors.New("malformed level table")

	// ErrMalformedSubdivisionTable indicates a count mismatch, a missing or early
	// terminator, or a subdivision outside the archive bounds.
	ErrMalformedSubdivisionTable = errors.New("malformed subdivision table")

	// ErrUnsupportedExtendedEntry marks an extended type entry that was skipped.
	// It is never returned from Decode.
	ErrUnsupportedExtendedEntry = errors.New("unsupported extended entry")
)

// DecodeError describes where in the subfile a decode failure happened.
type DecodeError struct {
	Section string // "header", "levels", "subdivisions", ...
	Offset  int64  // Subfile offset of the failing record
	Reason  string
	Err     error // Category sentinel, possibly wrapping a cursor error
}

func (e *DecodeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s at 0x%X: %s: %v", e.Section, e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s at 0x%X: %v", e.Section, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrSkippedEntry records one extended type entry that could not be decoded.
type ErrSkippedEntry struct {
	Table    string
	Offset   int64
	ItemSize uint16
}

func (e *ErrSkippedEntry) Error() string {
	return fmt.Sprintf("%s type table: entry at 0x%X with item size %d skipped",
		e.Table, e.Offset, e.ItemSize)
}

func (e *ErrSkippedEntry) Unwrap() error { return ErrUnsupportedExtendedEntry }

// tableError wraps a cursor failure with a table category so that both
// errors.Is(err, ErrMalformedXxx) and errors.Is(err, ErrTruncated) hold.
func tableError(section string, offset int64, category error, reason string, cause error) error {
	err := category
	if cause != nil {
		err = fmt.Errorf("%w: %w", category, cause)
	}
	return &DecodeError{Section: section, Offset: offset, Reason: reason, Err: err}
}
