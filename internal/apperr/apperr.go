// ABOUTME: Tagged error variants shared by the auth and records stores.
// ABOUTME: Remote failures normalize to a Kind plus a human-readable message.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

// Kind classifies an error by where it originated.
type Kind string

const (
	// KindValidation is a client-side, pre-network failure.
	KindValidation Kind = "validation"
	// KindAuth is a remote authentication failure.
	KindAuth Kind = "auth"
	// KindData is a remote read or write failure.
	KindData Kind = "data"
)

// Error is a normalized failure stored in a store's error slot.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Normalize turns any error into an *Error of the given kind. The fallback
// message is used when err carries no text. A nil err yields nil.
func Normalize(kind Kind, err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: kind, Message: e.Message}
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = fallback
	}
	return &Error{Kind: kind, Message: msg}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	var fe FieldErrors
	if errors.As(err, &fe) {
		return kind == KindValidation
	}
	return false
}

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return strings.Join(parts, "; ")
}

// Add records a message for a field, keeping the first one set.
func (fe FieldErrors) Add(field, message string) {
	if _, ok := fe[field]; !ok {
		fe[field] = message
	}
}

// OrNil returns nil when there are no field errors.
func (fe FieldErrors) OrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}
