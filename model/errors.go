package model

import "fmt"

type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrMalformedInput     ErrorCode = "MALFORMED_INPUT"
	ErrInvalidInputFormat ErrorCode = "INVALID_INPUT_FORMAT"
	ErrInvalidEntry       ErrorCode = "INVALID_ENTRY"
	ErrTooManyEntries     ErrorCode = "TOO_MANY_ENTRIES"
	ErrInvalidKey         ErrorCode = "INVALID_KEY"
	ErrDuplicateKey       ErrorCode = "DUPLICATE_KEY"
	ErrInvalidValue       ErrorCode = "INVALID_VALUE"
	ErrEntryTooLong       ErrorCode = "ENTRY_TOO_LONG"
	ErrEmptyPayload       ErrorCode = "EMPTY_PAYLOAD"
	ErrDigestComputation  ErrorCode = "DIGEST_COMPUTATION"
	ErrMalformedRecord    ErrorCode = "MALFORMED_RECORD"
	ErrDigestMismatch     ErrorCode = "DIGEST_MISMATCH"
	ErrInternal           ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
// RuleID and Position are copied from the core error when there is one.
type CodedError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	RuleID   string    `json:"ruleID,omitempty"`
	Position int       `json:"position,omitempty"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}
