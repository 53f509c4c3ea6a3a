package core

// error_messages.go maps technical errors to coded, user-facing messages.
//
// Codes let users quote a failure to support without exposing internals:
//
//	DOC001  response is not valid JSON
//	SRC001  source URL, method or auth is invalid
//	SRC002  source returned an error status
//	SRC003  source response too large
//	SRC004  source unreachable
//	SRC005  too many concurrent fetches
//	INT001  integration not found
//	INT002  integration name taken
//	INT003  malformed integration id
//	INT004  entity not found
//	MAP001  mapping or request failed validation
//	DB001   duplicate key
//	DB002   foreign key violation
//	DB004   database unreachable
//	DB006   operation timed out
//	REQ001  request cancelled
//	RATE001 too many requests
//	ERR000  anything else; check the logs for the technical error
//
// Sentinel errors are matched first with errors.Is. Anything else falls back
// to case-insensitive substring patterns, first match wins.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/feedmap/internal/mapping"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgUnparsable = UserMessage{
		Message: "The response is not valid JSON",
		Action:  "Check that the source returns a JSON document",
		Code:    "DOC001",
	}
	msgInvalidSource = UserMessage{
		Message: "The source settings are invalid",
		Action:  "Check the URL, method and authentication",
		Code:    "SRC001",
	}
	msgFetchStatus = UserMessage{
		Message: "The source returned an error",
		Action:  "Verify the URL and credentials, then fetch again",
		Code:    "SRC002",
	}
	msgBodyTooLarge = UserMessage{
		Message: "The source response is too large",
		Action:  "Narrow the request with filters or paging",
		Code:    "SRC003",
	}
	msgTooManyFetches = UserMessage{
		Message: "Too many sources are being fetched right now",
		Action:  "Please try again in a few moments",
		Code:    "SRC005",
	}
	msgIntegrationNotFound = UserMessage{
		Message: "Integration not found",
		Action:  "It may have been deleted; refresh the list",
		Code:    "INT001",
	}
	msgDuplicateIntegration = UserMessage{
		Message: "An integration with this name already exists",
		Action:  "Choose a different name",
		Code:    "INT002",
	}
	msgInvalidID = UserMessage{
		Message: "Invalid integration ID",
		Action:  "Check the link you followed",
		Code:    "INT003",
	}
	msgEntityNotFound = UserMessage{
		Message: "Entity not found",
		Action:  "Refresh the entity directory",
		Code:    "INT004",
	}
	msgInvalidInput = UserMessage{
		Message: "Some settings are invalid",
		Action:  "Review the highlighted fields and try again",
		Code:    "MAP001",
	}
)

// sentinelMessages is checked in order with errors.Is.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{mapping.ErrUnparsableDocument, msgUnparsable},
	{ErrInvalidSource, msgInvalidSource},
	{ErrFetchStatus, msgFetchStatus},
	{ErrBodyTooLarge, msgBodyTooLarge},
	{ErrTooManyFetches, msgTooManyFetches},
	{ErrIntegrationNotFound, msgIntegrationNotFound},
	{ErrDuplicateIntegration, msgDuplicateIntegration},
	{ErrInvalidID, msgInvalidID},
	{ErrEntityNotFound, msgEntityNotFound},
	{ErrInvalidInput, msgInvalidInput},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (lowercased) to user messages.
// Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{"duplicate key", UserMessage{
		Message: "A record with this key already exists",
		Action:  "Use a different name or key",
		Code:    "DB001",
	}},
	{"violates foreign key", UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Refresh and try again",
		Code:    "DB002",
	}},
	{"no such host", UserMessage{
		Message: "The source host could not be found",
		Action:  "Check the URL for typos",
		Code:    "SRC004",
	}},
	{"fetch ", UserMessage{
		Message: "Unable to reach the source",
		Action:  "Check the URL and that the source is online",
		Code:    "SRC004",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}},
	{"deadline exceeded", UserMessage{
		Message: "Operation timed out",
		Action:  "Try again later or increase the fetch timeout",
		Code:    "DB006",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try again later or increase the fetch timeout",
		Code:    "DB006",
	}},
	{"request body too large", UserMessage{
		Message: "The submitted document is too large",
		Action:  "Trim the sample or fetch it from the source instead",
		Code:    "REQ002",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
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

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
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

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
