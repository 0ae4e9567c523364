package core

// # Error Codes Reference
//
// Errors shown to operators carry a short code they can quote when asking
// for help. Typed errors from this package map to a code by kind; anything
// else is matched against text patterns.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Unreadable: file is not a readable spreadsheet
//	IMP002 - Unsupported format: only .xlsx and .csv are accepted
//	IMP003 - Empty: file has no header row or no data
//	IMP004 - Missing columns: a required column was not found
//	IMP005 - No valid rows: every data row was skipped
//
// # Verification Errors (VER001-VER099)
//
//	VER001 - Empty input: no material code entered
//	VER002 - No data: no reference table loaded
//	VER003 - Not found: material code not in the reference table
//	VER004 - Invalid date: date could not be parsed
//
// # Storage Errors (STO001-STO099)
//
//	STO001 - Save failed
//	STO002 - Clear failed
//	STO003 - Load failed
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - No file selected
//	FILE003 - Invalid CSV
//
// # Request Errors (ERR001-ERR099)
//
//	ERR001 - Request timed out
//	ERR002 - Request cancelled
//	ERR003 - Malformed request body
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application log for the
// technical error.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var importMessages = map[ImportErrorKind]UserMessage{
	ImportUnreadable: {
		Message: "The file could not be read as a spreadsheet",
		Action:  "Open it in Excel and save it again as .xlsx or .csv",
		Code:    "IMP001",
	},
	ImportUnsupportedFormat: {
		Message: "This file type is not supported",
		Action:  "Upload an .xlsx workbook or a .csv export",
		Code:    "IMP002",
	},
	ImportEmpty: {
		Message: "The uploaded file is empty",
		Action:  "Upload a spreadsheet with a header row and data rows",
		Code:    "IMP003",
	},
	ImportTooLarge: {
		Message: "File exceeds the maximum upload size",
		Action:  "Remove unused sheets or columns and try again",
		Code:    "FILE001",
	},
	ImportMissingColumns: {
		Message: "Required columns are missing",
		Action:  "The sheet needs Material, vida util minima and vida util máxima columns",
		Code:    "IMP004",
	},
	ImportNoValidRows: {
		Message: "No row had a material code with numeric minimum and maximum",
		Action:  "Check that the shelf-life columns contain numbers",
		Code:    "IMP005",
	},
}

var verifyMessages = map[VerificationErrorKind]UserMessage{
	VerifyEmptyInput: {
		Message: "Enter a material code",
		Action:  "Type the material code as it appears in the reference sheet",
		Code:    "VER001",
	},
	VerifyNoData: {
		Message: "No reference data loaded",
		Action:  "Upload the shelf-life spreadsheet first",
		Code:    "VER002",
	},
	VerifyNotFound: {
		Message: "Material not found in the reference data",
		Action:  "Check the code or upload an updated spreadsheet",
		Code:    "VER003",
	},
	VerifyInvalidDate: {
		Message: "Invalid date",
		Action:  "Use DD/MM/YYYY or YYYY-MM-DD",
		Code:    "VER004",
	},
}

var storageMessages = map[string]UserMessage{
	"save": {
		Message: "The reference data could not be saved",
		Action:  "The previous data is still in use. Check disk space and permissions",
		Code:    "STO001",
	},
	"clear": {
		Message: "The stored reference data could not be deleted",
		Action:  "Check file permissions and try again",
		Code:    "STO002",
	},
	"load": {
		Message: "The stored reference data could not be read",
		Action:  "Upload the spreadsheet again",
		Code:    "STO003",
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are matched case-insensitively with strings.Contains after
// the typed mappings fail. The first match wins.
var errorPatterns = []errorPattern{
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Remove unused sheets or columns and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose a spreadsheet to upload",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Export the sheet again as CSV (comma or semicolon separated)",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Send a material code and a date",
			Code:    "ERR003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "ERR001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "ERR002",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the application log",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message. Typed errors from
// this package map by kind; other errors fall back to text patterns and
// then to ERR000. A nil error yields the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		ie *ImportError
		ve *VerificationError
		se *StorageError
	)
	switch {
	case errors.As(err, &ie):
		if msg, ok := importMessages[ie.Kind]; ok {
			if ie.Kind == ImportMissingColumns && len(ie.Columns) > 0 {
				msg.Message = "Required columns are missing: " + strings.Join(ie.Columns, ", ")
			}
			return msg
		}
	case errors.As(err, &ve):
		if msg, ok := verifyMessages[ve.Kind]; ok {
			return msg
		}
	case errors.As(err, &se):
		if msg, ok := storageMessages[se.Op]; ok {
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders MapError as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
