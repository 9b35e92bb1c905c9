// Error codes reference.
//
// This file maps pipeline and server errors to user-friendly messages with
// codes for support reference. Users can quote the code when reporting a
// problem.
//
// Error codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
// Errors raised while reading an upload. All of them arrive as *LoadError:
//
//	FILE001 - File too large: File exceeds the upload size limit
//	          Action: Remove unused rows or columns and try again
//	          Patterns: "file too large"
//
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Action: Ensure the file is comma-separated with a header row
//	          Patterns: "invalid csv"
//
//	FILE003 - Read error: The upload could not be read
//	          Action: Please try uploading the file again
//	          Patterns: "read upload"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV or Excel file to upload
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Action: Please upload a file with a header row
//	          Patterns: "empty file"
//
//	FILE006 - Unsupported type: Only .csv and .xlsx files are accepted
//	          Action: Save the file as CSV or Excel workbook
//	          Patterns: "unsupported file type"
//
//	FILE007 - Invalid spreadsheet: The workbook could not be opened
//	          Action: Re-save the workbook in Excel format (.xlsx)
//	          Patterns: "invalid spreadsheet"
//
// # Selection Errors (CFG001-CFG099)
//
// Errors raised when a selection does not fit the loaded Dataset. All of
// them arrive as *ConfigurationError:
//
//	CFG001 - Column not found: A selected column is not in this file
//	         Action: Pick a column from the loaded file
//	         Patterns: "column not found"
//
//	CFG002 - Wrong column type: The column cannot be used for this control
//	         Action: Use a text column for categories and a numeric column for ranges
//	         Patterns: "wrong column type"
//
//	CFG003 - Unknown chart: The chart type is not supported
//	         Action: Choose Line, Bar, Scatter, Correlation Heatmap or Interactive Scatter
//	         Patterns: "unknown chart kind"
//
//	CFG004 - Invalid range: The range minimum is above the maximum
//	         Action: Lower the minimum or raise the maximum
//	         Patterns: "exceeds maximum"
//
//	CFG005 - Invalid selection: The selection could not be applied
//	         Action: Reset the controls and try again
//	         Patterns: "invalid selection", "invalid request body"
//
// # Chart Warnings (CHT001-CHT099)
//
// Recoverable *ChartError values. The session stays usable:
//
//	CHT001 - Not enough numeric columns for a correlation heatmap
//	         Action: Choose another chart or load a file with more numeric columns
//	         Patterns: "insufficient numeric columns"
//
//	CHT002 - No rows to chart: No row has values for both axes
//	         Action: Widen the filters or choose other axes
//	         Patterns: "no rows to chart"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found: The session expired or never existed
//	         Action: Please upload the file again
//	         Patterns: "session not found"
//
//	SES002 - Server full: Too many active sessions
//	         Action: Please try again in a few minutes
//	         Patterns: "too many active sessions"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many uploads"
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are listed
// before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE007)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the upload size limit",
			Action:  "Remove unused rows or columns and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "read upload",
		msg: UserMessage{
			Message: "The upload could not be read",
			Action:  "Please try uploading the file again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV or Excel file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Only .csv and .xlsx files are accepted",
			Action:  "Save the file as CSV or Excel workbook",
			Code:    "FILE006",
		},
	},
	{
		pattern: "invalid spreadsheet",
		msg: UserMessage{
			Message: "The workbook could not be opened",
			Action:  "Re-save the workbook in Excel format (.xlsx)",
			Code:    "FILE007",
		},
	},

	// =========================================================================
	// Selection Errors (CFG001-CFG005)
	// =========================================================================
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "A selected column is not in this file",
			Action:  "Pick a column from the loaded file",
			Code:    "CFG001",
		},
	},
	{
		pattern: "wrong column type",
		msg: UserMessage{
			Message: "The column cannot be used for this control",
			Action:  "Use a text column for categories and a numeric column for ranges",
			Code:    "CFG002",
		},
	},
	{
		pattern: "unknown chart kind",
		msg: UserMessage{
			Message: "The chart type is not supported",
			Action:  "Choose Line, Bar, Scatter, Correlation Heatmap or Interactive Scatter",
			Code:    "CFG003",
		},
	},
	{
		pattern: "exceeds maximum",
		msg: UserMessage{
			Message: "The range minimum is above the maximum",
			Action:  "Lower the minimum or raise the maximum",
			Code:    "CFG004",
		},
	},
	{
		pattern: "invalid selection",
		msg: UserMessage{
			Message: "The selection could not be applied",
			Action:  "Reset the controls and try again",
			Code:    "CFG005",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The selection could not be applied",
			Action:  "Reset the controls and try again",
			Code:    "CFG005",
		},
	},

	// =========================================================================
	// Chart Warnings (CHT001-CHT002)
	// =========================================================================
	{
		pattern: "insufficient numeric columns",
		msg: UserMessage{
			Message: "Not enough numeric columns for a correlation heatmap",
			Action:  "Choose another chart or load a file with more numeric columns",
			Code:    "CHT001",
		},
	},
	{
		pattern: "no rows to chart",
		msg: UserMessage{
			Message: "No row has values for both chart axes",
			Action:  "Widen the filters or choose other axes",
			Code:    "CHT002",
		},
	},

	// =========================================================================
	// Session Errors (SES001-SES002)
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Session not found",
			Action:  "The session may have expired. Please upload the file again",
			Code:    "SES001",
		},
	},
	{
		pattern: "too many active sessions",
		msg: UserMessage{
			Message: "Too many active sessions",
			Action:  "Please try again in a few minutes",
			Code:    "SES002",
		},
	},

	// =========================================================================
	// Upload Errors (UPL002-UPL005)
	// =========================================================================
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	_, err := core.Load(data, "report.pdf")
//	msg := MapError(err)
//	// msg.Code == "FILE006"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern, i.e. maps to
// anything but the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps a technical error to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
