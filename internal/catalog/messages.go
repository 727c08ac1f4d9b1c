package catalog

// messages.go maps failures to short user-facing messages with support
// codes, so surfaces never leak storage-specific detail beyond a brief
// diagnostic string.
//
// Codes:
//
//	VAL001 - one or more field invariants violated
//	DB001  - duplicate id on insert
//	DB002  - store unreachable or misconfigured
//	DB003  - operation timed out
//	CSV001 - a CSV line could not be parsed
//	ERR000 - anything unclassified
//
// Typed errors are matched first; string patterns (case-insensitive
// Contains, first match wins) catch storage detail that arrives as
// plain wrapped errors.

import (
	"errors"
	"strings"
)

// UserMessage is the user-facing form of a failure.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	// Violations is populated for validation failures so forms can
	// show every field problem at once.
	Violations []string `json:"violations,omitempty"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A product with this ID already exists",
			Action:  "Use a different ID",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the product database",
			Action:  "Please try again in a few moments",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "parse",
		msg: UserMessage{
			Message: "A line in the file could not be read",
			Action:  "Check the file against the export format",
			Code:    "CSV001",
		},
	},
}

// MapError translates err into its user-facing message.
func MapError(err error) UserMessage {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return UserMessage{
			Message:    "The product could not be saved because some fields are invalid",
			Action:     "Fix the listed fields and retry",
			Code:       "VAL001",
			Violations: ve.Violations,
		}
	}

	var de *DuplicateKeyError
	if errors.As(err, &de) {
		return UserMessage{
			Message: "A product with this ID already exists",
			Action:  "Use a different ID",
			Code:    "DB001",
		}
	}

	if IsConnectivityError(err) {
		return UserMessage{
			Message: "Unable to reach the product database",
			Action:  "Please try again in a few moments",
			Code:    "DB002",
		}
	}

	lower := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(lower, ep.pattern) {
			return ep.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or check the server logs",
		Code:    "ERR000",
	}
}
