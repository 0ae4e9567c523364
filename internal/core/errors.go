package core

import (
	"errors"
	"fmt"
	"strings"
)

// ImportErrorKind classifies why an upload could not become a reference table.
type ImportErrorKind int

const (
	ImportUnreadable ImportErrorKind = iota + 1
	ImportUnsupportedFormat
	ImportEmpty
	ImportTooLarge
	ImportMissingColumns
	ImportNoValidRows
)

func (k ImportErrorKind) String() string {
	switch k {
	case ImportUnreadable:
		return "unreadable"
	case ImportUnsupportedFormat:
		return "unsupported_format"
	case ImportEmpty:
		return "empty"
	case ImportTooLarge:
		return "too_large"
	case ImportMissingColumns:
		return "missing_columns"
	case ImportNoValidRows:
		return "no_valid_rows"
	default:
		return "unknown"
	}
}

// ImportError is returned by the importer. When it is returned no table
// has been installed or persisted.
type ImportError struct {
	Kind    ImportErrorKind
	Columns []string // required columns that were not found (ImportMissingColumns)
	Err     error
}

func (e *ImportError) Error() string {
	var msg string
	switch e.Kind {
	case ImportUnreadable:
		msg = "file is not a readable spreadsheet"
	case ImportUnsupportedFormat:
		msg = "unsupported file format"
	case ImportEmpty:
		msg = "empty file"
	case ImportTooLarge:
		msg = "file too large"
	case ImportMissingColumns:
		msg = "missing required columns: " + strings.Join(e.Columns, ", ")
	case ImportNoValidRows:
		msg = "no valid rows"
	default:
		msg = "import failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("import: %s: %v", msg, e.Err)
	}
	return "import: " + msg
}

func (e *ImportError) Unwrap() error { return e.Err }

// Is matches another *ImportError of the same kind, so the sentinels below
// work with errors.Is.
func (e *ImportError) Is(target error) bool {
	t, ok := target.(*ImportError)
	return ok && t.Kind == e.Kind
}

var (
	ErrImportUnreadable  = &ImportError{Kind: ImportUnreadable}
	ErrUnsupportedFormat = &ImportError{Kind: ImportUnsupportedFormat}
	ErrEmptyFile         = &ImportError{Kind: ImportEmpty}
	ErrFileTooLarge      = &ImportError{Kind: ImportTooLarge}
	ErrMissingColumns    = &ImportError{Kind: ImportMissingColumns}
	ErrNoValidRows       = &ImportError{Kind: ImportNoValidRows}
)

// VerificationErrorKind classifies input or state problems during Verify.
type VerificationErrorKind int

const (
	VerifyEmptyInput VerificationErrorKind = iota + 1
	VerifyNoData
	VerifyNotFound
	VerifyInvalidDate
)

func (k VerificationErrorKind) String() string {
	switch k {
	case VerifyEmptyInput:
		return "empty_input"
	case VerifyNoData:
		return "no_data"
	case VerifyNotFound:
		return "not_found"
	case VerifyInvalidDate:
		return "invalid_date"
	default:
		return "unknown"
	}
}

// VerificationError reports why a lookup produced no verdict.
// Input holds the normalized material code or the rejected date text.
type VerificationError struct {
	Kind  VerificationErrorKind
	Input string
}

func (e *VerificationError) Error() string {
	switch e.Kind {
	case VerifyEmptyInput:
		return "verify: material code is empty"
	case VerifyNoData:
		return "verify: no reference data loaded"
	case VerifyNotFound:
		return fmt.Sprintf("verify: material %q not found", e.Input)
	case VerifyInvalidDate:
		return fmt.Sprintf("verify: invalid date %q", e.Input)
	default:
		return "verify: failed"
	}
}

func (e *VerificationError) Is(target error) bool {
	t, ok := target.(*VerificationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrEmptyInput  = &VerificationError{Kind: VerifyEmptyInput}
	ErrNoData      = &VerificationError{Kind: VerifyNoData}
	ErrNotFound    = &VerificationError{Kind: VerifyNotFound}
	ErrInvalidDate = &VerificationError{Kind: VerifyInvalidDate}
)

// StorageError wraps a failure of the durable store.
// Op is one of "save", "load" or "clear".
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// errorKind labels err for metrics and logs.
func errorKind(err error) string {
	var (
		ie *ImportError
		ve *VerificationError
		se *StorageError
	)
	switch {
	case errors.As(err, &ie):
		return ie.Kind.String()
	case errors.As(err, &ve):
		return ve.Kind.String()
	case errors.As(err, &se):
		return "storage"
	default:
		return "error"
	}
}
