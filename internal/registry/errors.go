// Package registry implements product CRUD and rating semantics over an
// injected store.
package registry

import (
	"errors"
	"fmt"
)

// Kind classifies a registry failure.
type Kind int

const (
	// KindInvalidInput marks rejected caller input.
	KindInvalidInput Kind = iota + 1
	// KindNotFound marks lookups of ids the registry does not hold.
	KindNotFound
	// KindConflict marks writes that would break the unique-name rule.
	KindConflict
	// KindEmptyCollection marks list calls against an empty registry.
	KindEmptyCollection
)

// Error is a classified registry failure with a caller-facing message.
// Store faults are never wrapped in an Error; they propagate as plain
// wrapped errors and callers surface them generically.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func invalidf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func emptyf(format string, args ...any) *Error {
	return &Error{Kind: KindEmptyCollection, Message: fmt.Sprintf(format, args...)}
}

func hasKind(err error, k Kind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == k
}

// IsInvalidInput reports whether err is a rejected-input failure.
func IsInvalidInput(err error) bool { return hasKind(err, KindInvalidInput) }

// IsNotFound reports whether err is an unknown-id failure.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsConflict reports whether err is a duplicate-name failure.
func IsConflict(err error) bool { return hasKind(err, KindConflict) }

// IsEmptyCollection reports whether err is an empty-registry failure.
func IsEmptyCollection(err error) bool { return hasKind(err, KindEmptyCollection) }
