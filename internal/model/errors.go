package model

import "fmt"

// Kind is a machine-readable failure class surfaced to API callers.
type Kind string

const (
	KindInvalidInput         Kind = "invalid_input"
	KindMissingCategory      Kind = "missing_category"
	KindUnknownCategory      Kind = "unknown_category"
	KindOutOfRange           Kind = "out_of_range"
	KindNoJSONFound          Kind = "no_json_found"
	KindMissingField         Kind = "missing_field"
	KindUpstreamUnavailable  Kind = "upstream_unavailable"
	KindMissingRequiredField Kind = "missing_required_field"
	KindRenderFailed         Kind = "render_failed"
)

// Error is a structured failure carrying a kind for the API error body.
// Field names the offending field or category where that helps diagnosis.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %q)", msg, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Errf builds an Error with a formatted message.
func Errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// FieldErr builds an Error pointing at a specific field.
func FieldErr(kind Kind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}
