package img

import (
	"errors"

	"github.com/beetlebugorg/img/internal/parser"
)

// Errors re-exported from the decoder. Classify Open failures with errors.Is.
var (
	// ErrTruncated is returned when a read runs past the end of the subfile.
	ErrTruncated = parser.ErrTruncated

	// ErrOutOfRange is returned when an offset exceeds the declared subfile size.
	ErrOutOfRange = parser.ErrOutOfRange

	// ErrMalformedHeader is returned when the TRE header is unusable.
	ErrMalformedHeader = parser.ErrMalformedHeader

	// ErrMalformedLevelTable is returned for an invalid level table.
	ErrMalformedLevelTable = parser.ErrMalformedLevelTable

	// ErrMalformedSubdivisionTable is returned for a count mismatch, a missing
	// or early terminator, or a subdivision outside the archive bounds.
	ErrMalformedSubdivisionTable = parser.ErrMalformedSubdivisionTable

	// ErrUnsupportedExtendedEntry marks skipped extended type entries. It is
	// logged, never returned from Open.
	ErrUnsupportedExtendedEntry = parser.ErrUnsupportedExtendedEntry
)

// ErrClosed is returned by Init on an archive that has been closed.
var ErrClosed = errors.New("archive is closed")

// DecodeError carries the section and offset of a decode failure.
type DecodeError = parser.DecodeError
