// Package apperr defines the error taxonomy shared by the storefront client,
// the form validators and the list query controller.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an error for the caller rendering it.
type Kind int

const (
	Unknown Kind = iota
	Network
	Validation
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Network:
		return "network"
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error carries the kind plus enough context to show a message to the user.
type Error struct {
	Kind       Kind
	Op         string
	Message    string
	StatusCode int
	// Fields holds per-field messages for Validation errors.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil && (e.Message == "" || e.Message != e.Err.Error()) {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns the text that should be shown to an end user.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return e.Fields[keys[0]]
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "Something went wrong"
}

func NewNetwork(op string, err error) *Error {
	return &Error{Kind: Network, Op: op, Message: "network request failed", Err: err}
}

func NewValidation(op string, fields map[string]string) *Error {
	return &Error{Kind: Validation, Op: op, Fields: fields}
}

func NewConflict(op, message string) *Error {
	return &Error{Kind: Conflict, Op: op, Message: message, StatusCode: http.StatusConflict}
}

func NewUnknown(op string, err error) *Error {
	e := &Error{Kind: Unknown, Op: op, Err: err}
	if err != nil {
		e.Message = err.Error()
	}
	return e
}

// FromStatus maps a non-2xx API response to the taxonomy. message is the
// server supplied error string and is passed through untouched.
func FromStatus(op string, status int, message string) *Error {
	e := &Error{Op: op, Message: message, StatusCode: status}
	switch status {
	case http.StatusConflict:
		e.Kind = Conflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		e.Kind = Validation
	default:
		e.Kind = Unknown
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func IsNetwork(err error) bool    { return err != nil && KindOf(err) == Network }
func IsValidation(err error) bool { return err != nil && KindOf(err) == Validation }
func IsConflict(err error) bool   { return err != nil && KindOf(err) == Conflict }

// Message extracts a user facing message from any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return err.Error()
}
