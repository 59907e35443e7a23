package txdigest

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
//
// NOTE: Error() strings are human-readable and may evolve.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	KindMalformedInput     Kind = "MalformedInput"
	KindInvalidInputFormat Kind = "InvalidInputFormat"
	KindInvalidEntry       Kind = "InvalidEntry"
	KindTooManyEntries     Kind = "TooManyEntries"
	KindInvalidKey         Kind = "InvalidKey"
	KindDuplicateKey       Kind = "DuplicateKey"
	KindInvalidValue       Kind = "InvalidValue"
	KindEntryTooLong       Kind = "EntryTooLong"
	KindEmptyPayload       Kind = "EmptyPayload"
	KindDigestComputation  Kind = "DigestComputationError"

	// Verifier-side kinds.
	KindMalformedRecord Kind = "MalformedRecord"
	KindDigestMismatch  Kind = "DigestMismatch"

	KindInternal Kind = "Internal"
)

// Error is the library's structured error type.
//
// RuleID is a stable identifier (e.g., TXD-PARSE-001, TXD-VAL-103) naming the
// violated rule. Position, Key and Length carry context when the rule concerns
// a single entry; Position is 1-based and zero when not applicable.
//
// Message is intended for humans; do not match on it.
type Error struct {
	Kind     Kind
	RuleID   string
	Message  string
	Position int
	Key      string
	Length   int
	Cause    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) *Error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

func wrapError(kind Kind, ruleID, msg string, cause error) *Error {
	e := newError(kind, ruleID, msg)
	e.Cause = cause
	return e
}

func entryError(kind Kind, ruleID, msg string, position int, key string) *Error {
	e := newError(kind, ruleID, msg)
	e.Position = position
	e.Key = key
	return e
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the Kind of a structured error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
