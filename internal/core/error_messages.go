package core

// error_messages.go maps technical errors to user-friendly messages with
// support codes. Users quote the code to support staff for faster
// diagnosis.
//
// # User Errors (USR001-USR099)
//
//	USR001 - Duplicate account: a user with this email already exists
//	USR002 - User not found
//	USR003 - Role not found
//	USR004 - Invitation not found
//	USR005 - Invalid status: not one of active, inactive, suspended
//	USR006 - No changes: the update carried no fields
//	USR007 - Duplicate role name
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: another import is running
//	IMP002 - Encoding error: file is not UTF-8 text
//	IMP003 - Empty file: no header line
//	IMP004 - Invalid CSV: tokenizer rejected the file
//	IMP005 - Unreadable input: any other ErrInvalidInput
//	IMP006 - File too large
//	IMP007 - No file provided
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid email
//	VAL002 - Invalid CPF/CNPJ check digits
//	VAL003 - Invalid phone number
//	VAL004 - Required field is empty
//	VAL005 - Value not in the allowed list
//	VAL006 - Any other validation failure
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Unique constraint violated
//	DB002 - Foreign key violated
//	DB003 - Connection refused
//	DB004 - Connection reset
//	DB005 - Deadlock
//
// # Request Errors
//
//	RATE001 - Rate limited
//	ERR001  - Request timed out
//	ERR002  - Request cancelled
//	ERR000  - Unknown error (fallback; check application logs)
//
// Patterns are matched case-insensitively with strings.Contains. The first
// matching pattern wins, so specific patterns come before general ones.

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

var errorPatterns = []errorPattern{
	// User errors
	{"user already exists", UserMessage{"A user with this email already exists", "Use a different email or edit the existing user", "USR001"}},
	{"user not found", UserMessage{"User not found", "Refresh the list, the user may have been removed", "USR002"}},
	{"role not found", UserMessage{"Role not found", "Refresh the list, the role may have been removed", "USR003"}},
	{"invitation not found", UserMessage{"Invitation not found", "The invitation may have expired. Send a new one", "USR004"}},
	{"invalid status", UserMessage{"Invalid status", "Use active, inactive or suspended", "USR005"}},
	{"no changes supplied", UserMessage{"Nothing to update", "Change at least one field before saving", "USR006"}},
	{"role already exists", UserMessage{"A role with this name already exists", "Choose a different role name", "USR007"}},

	// Import errors
	{"too many concurrent imports", UserMessage{"Another import is in progress", "Please wait a moment and try again", "IMP001"}},
	{"encoding error", UserMessage{"File contains invalid characters", "Save the file as UTF-8 encoding", "IMP002"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Use the template and add one row per user", "IMP003"}},
	{"invalid csv", UserMessage{"File is not a valid CSV", "Ensure the file is comma-separated and quotes are balanced", "IMP004"}},
	{"invalid import input", UserMessage{"The file could not be read", "Download the template and try again", "IMP005"}},
	{"file too large", UserMessage{"File exceeds the maximum size", "Split the file into smaller files", "IMP006"}},
	{"request body too large", UserMessage{"File exceeds the maximum size", "Split the file into smaller files", "IMP006"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a CSV file to import", "IMP007"}},

	// Validation errors
	{"must be a valid email address", UserMessage{"Invalid email address", "Check the email format, e.g. nome@empresa.com", "VAL001"}},
	{"cpf_cnpj", UserMessage{"Invalid CPF or CNPJ", "Check the digits of the document number", "VAL002"}},
	{"phone number", UserMessage{"Invalid phone number", "Use DDD plus number, 10 or 11 digits", "VAL003"}},
	{"required field", UserMessage{"Required field is empty", "Fill in email, name and role", "VAL004"}},
	{"invalid enum", UserMessage{"Value is not in the allowed list", "Check the allowed values for this field", "VAL005"}},
	{"validation failed", UserMessage{"Some fields are invalid", "Review the highlighted fields", "VAL006"}},

	// Database errors
	{"duplicate key", UserMessage{"This value must be unique but already exists", "Check for duplicate entries", "DB001"}},
	{"violates unique", UserMessage{"This value must be unique but already exists", "Check for duplicate entries", "DB001"}},
	{"violates foreign key", UserMessage{"Referenced record does not exist", "Refresh and try again", "DB002"}},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB003"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB004"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB005"}},

	// Request errors
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller file or try again later", "ERR001"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "ERR002"}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
//	msg := MapError(ErrUserExists)
//	// msg.Code == "USR001"
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

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than
// falling back to ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error stays reachable through Unwrap for logging.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
