// Package common holds the error taxonomy shared by every stage of a
// verification run.
package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure of a verification run.
type Kind int

const (
	// KindLoad is a missing, unreadable, or undecodable input image.
	KindLoad Kind = iota
	// KindMissingInput is a LoadError raised before any file is touched
	// because one of the two input paths is empty.
	KindMissingInput
	// KindFeature is one or both images yielding zero descriptors.
	KindFeature
	// KindConfig is an invalid threshold or detector/matcher parameter.
	KindConfig
	// KindRender is a failure to compose or persist the composite image.
	KindRender
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLoad, KindMissingInput:
		return "LoadError"
	case KindFeature:
		return "FeatureError"
	case KindConfig:
		return "ConfigError"
	case KindRender:
		return "RenderError"
	default:
		return "UnknownError"
	}
}

// Error is a terminal failure of one verification run.
type Error struct {
	// Kind is the taxonomy bucket.
	Kind Kind
	// Op is the stage that failed (normalize, extract, match, decide, render).
	Op string
	// Detail is the human-readable message shown to the user.
	Detail string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Op, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Detail)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// Message returns the message meant for the presentation layer.
func (e *Error) Message() string {
	switch e.Kind {
	case KindMissingInput:
		return "Please select both signature images."
	case KindFeature:
		return "Insufficient features in one or both images."
	default:
		return e.Detail
	}
}

func newError(kind Kind, op string, cause error, format string, args ...interface{}) error {
	detail := fmt.Sprintf(format, args...)
	if cause != nil {
		cause = errors.Wrap(cause, op)
	}
	return &Error{Kind: kind, Op: op, Detail: detail, Cause: cause}
}

// LoadError reports an input image that could not be loaded.
func LoadError(op string, cause error, format string, args ...interface{}) error {
	return newError(KindLoad, op, cause, format, args...)
}

// MissingInputError reports an empty input path.
func MissingInputError(op, which string) error {
	return newError(KindMissingInput, op, nil, "%s image path is empty", which)
}

// FeatureError reports an image without usable descriptors.
func FeatureError(op string, format string, args ...interface{}) error {
	return newError(KindFeature, op, nil, format, args...)
}

// ConfigError reports an invalid configuration value.
func ConfigError(op string, format string, args ...interface{}) error {
	return newError(KindConfig, op, nil, format, args...)
}

// RenderError reports a composite that could not be built or written.
func RenderError(op string, cause error, format string, args ...interface{}) error {
	return newError(KindRender, op, cause, format, args...)
}

// IsKind reports whether err carries a *Error of the given kind. KindLoad
// also matches KindMissingInput.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if kind == KindLoad && e.Kind == KindMissingInput {
		return true
	}
	return e.Kind == kind
}

// UserMessage returns the presentation message for err. Errors outside the
// taxonomy fall back to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return errors.Cause(err).Error()
}
