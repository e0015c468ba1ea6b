package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for the intake request lifecycle.
var (
	ErrUnauthorized      = errors.New("invalid csrf token")
	ErrEmptyDescription  = errors.New("no description")
	ErrChannelNotDefined = errors.New("channel not defined")
)

// UnknownTopicError is returned when a topic does not map to any registered
// channel list. Topic holds the value exactly as the caller sent it.
type UnknownTopicError struct {
	Topic string
}

func (e *UnknownTopicError) Error() string {
	return fmt.Sprintf("invalid topic %q", e.Topic)
}

// FieldError describes one structural problem with a request, located by the
// path of the offending input (e.g. ["body", "topic"] or ["query", "csrf_token"]).
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// StructuralError is returned when a request does not have the expected
// shape: missing parameters, missing fields or fields of the wrong type.
type StructuralError struct {
	Fields []FieldError
}

func (e *StructuralError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, strings.Join(f.Loc, ".")+": "+f.Msg)
	}
	return "malformed request: " + strings.Join(parts, "; ")
}

// MissingField builds a StructuralError for a single required input.
func MissingField(loc ...string) *StructuralError {
	return &StructuralError{Fields: []FieldError{{
		Loc:  loc,
		Msg:  "field required",
		Type: "value_error.missing",
	}}}
}
