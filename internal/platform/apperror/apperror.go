// Package apperror defines the error taxonomy shared by every engine:
// feature-disabled, not-found, validation, conflict and transient store
// failures. Errors are classified by Kind and tested with errors.As /
// the Is* helpers rather than string matching.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an engine error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindFeatureDisabled means the tenant's feature flag gates the operation off.
	KindFeatureDisabled
	// KindNotFound means a referenced bed/patient/admission/prediction does not exist.
	KindNotFound
	// KindValidation means malformed input, an unknown barrier id, an invalid
	// isolation type or an illegal state transition.
	KindValidation
	// KindConflict means a concurrent writer got there first (e.g. the bed is
	// no longer available at assignment time).
	KindConflict
	// KindTransient means the store failed in a way that may succeed on retry.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindFeatureDisabled:
		return "feature_disabled"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error is a classified engine error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// FeatureDisabled reports that the named feature is gated off for the tenant.
func FeatureDisabled(feature string) *Error {
	return &Error{Kind: KindFeatureDisabled, Msg: fmt.Sprintf("feature %q is disabled for this tenant", feature)}
}

// NotFound reports a missing entity, e.g. NotFound("bed", id).
func NotFound(entity string, id interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("%s %v not found", entity, id)}
}

// Validation reports invalid input.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Conflict reports a lost write race.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Transient wraps a store error that may succeed on retry.
func Transient(msg string, err error) *Error {
	return &Error{Kind: KindTransient, Msg: msg, Err: err}
}

// KindOf returns the Kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

func IsFeatureDisabled(err error) bool { return KindOf(err) == KindFeatureDisabled }
func IsNotFound(err error) bool        { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool      { return KindOf(err) == KindValidation }
func IsConflict(err error) bool        { return KindOf(err) == KindConflict }
func IsTransient(err error) bool       { return KindOf(err) == KindTransient }

// HTTPStatus maps an error to the status code the API layer returns.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindFeatureDisabled:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
