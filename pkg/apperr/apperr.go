// Package apperr carries the error taxonomy of the risk pipeline. Every
// failure that reaches a caller is an *Error with a Kind, so front ends can
// branch on the kind instead of parsing text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unknown Kind = iota
	InvalidAmount
	InvalidDate
	InvalidHorizon
	DataUnavailable
	ModelFitFailure
	NonFiniteResult
	Internal
)

var kindNames = map[Kind]string{
	Unknown:         "Unknown",
	InvalidAmount:   "InvalidAmount",
	InvalidDate:     "InvalidDate",
	InvalidHorizon:  "InvalidHorizon",
	DataUnavailable: "DataUnavailable",
	ModelFitFailure: "ModelFitFailure",
	NonFiniteResult: "NonFiniteResult",
	Internal:        "Internal",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Code is the machine-readable form used in API responses, e.g.
// ERR_DATA_UNAVAILABLE.
func (k Kind) Code() string {
	switch k {
	case InvalidAmount:
		return "ERR_INVALID_AMOUNT"
	case InvalidDate:
		return "ERR_INVALID_DATE"
	case InvalidHorizon:
		return "ERR_INVALID_HORIZON"
	case DataUnavailable:
		return "ERR_DATA_UNAVAILABLE"
	case ModelFitFailure:
		return "ERR_MODEL_FIT_FAILURE"
	case NonFiniteResult:
		return "ERR_NON_FINITE_RESULT"
	case Internal:
		return "ERR_INTERNAL"
	default:
		return "ERR_UNKNOWN"
	}
}

// UserCorrectable reports whether the caller can fix the error by changing
// the request.
func (k Kind) UserCorrectable() bool {
	return k == InvalidAmount || k == InvalidDate || k == InvalidHorizon
}

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err,
// apperr.E(apperr.DataUnavailable)) works as a kind test.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, a ...any) *Error {
	return New(kind, fmt.Sprintf(format, a...))
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// E returns a bare sentinel of the given kind for use with errors.Is.
func E(kind Kind) *Error {
	return &Error{Kind: kind}
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unknown
}

// Message returns the human part of err without the kind prefix.
func Message(err error) string {
	var ae *Error
	if !errors.As(err, &ae) {
		return err.Error()
	}
	if ae.Err != nil {
		return fmt.Sprintf("%s: %v", ae.Message, ae.Err)
	}
	return ae.Message
}
