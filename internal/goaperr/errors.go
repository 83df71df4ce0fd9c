// Package goaperr defines the typed error taxonomy surfaced by the
// planner and the sense-plan-act runtime: a sentinel/Wrap pattern built
// around comparable Kind/Variant templates, without HTTP-status plumbing
// the runtime has no need for.
package goaperr

import (
	stdErrors "errors"
	"fmt"
)

// Kind identifies the broad error category so callers can branch without
// enumerating every concrete variant.
type Kind string

const (
	KindOperationFailed Kind = "OPERATION_FAILED"
	KindSensor          Kind = "SENSOR_ERROR"
	KindAction          Kind = "ACTION_ERROR"
	KindPlan            Kind = "PLAN_ERROR"
)

// Variant narrows Kind for the collection-management errors that Sensor
// and Action registries both need (duplicate registration, missing
// lookup, conflicting type). VariantMultipleType exists for taxonomy
// parity: the condition that raises it in a dynamically typed registry,
// an element of the wrong type added to a collection, is unrepresentable
// against Go's typed sensor and action slices, so no code path here
// returns it.
type Variant string

const (
	VariantNone                Variant = ""
	VariantAlreadyInCollection Variant = "ALREADY_IN_COLLECTION"
	VariantDoesNotExist        Variant = "DOES_NOT_EXIST"
	VariantMultipleType        Variant = "MULTIPLE_TYPE"
)

// Error is the concrete error type for every error this module returns.
type Error struct {
	Kind    Kind
	Variant Variant
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, SensorError) match any *Error with the same Kind,
// independent of Variant or Message, using pre-built templates as
// sentinel comparison targets.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Variant != VariantNone && t.Variant != e.Variant {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinel templates, compared against with Is/errors.Is rather than
// matched by string.
var (
	OperationFailed = &Error{Kind: KindOperationFailed}

	SensorError               = &Error{Kind: KindSensor}
	SensorAlreadyInCollection = &Error{Kind: KindSensor, Variant: VariantAlreadyInCollection}
	SensorDoesNotExist        = &Error{Kind: KindSensor, Variant: VariantDoesNotExist}
	SensorMultipleType        = &Error{Kind: KindSensor, Variant: VariantMultipleType}

	ActionError               = &Error{Kind: KindAction}
	ActionAlreadyInCollection = &Error{Kind: KindAction, Variant: VariantAlreadyInCollection}
	ActionDoesNotExist        = &Error{Kind: KindAction, Variant: VariantDoesNotExist}
	ActionMultipleType        = &Error{Kind: KindAction, Variant: VariantMultipleType}

	PlanFailed = &Error{Kind: KindPlan, Message: "no plan satisfies the goal"}
)

// New builds an *Error from a sentinel template with a formatted message.
func New(base *Error, format string, args ...any) *Error {
	return &Error{Kind: base.Kind, Variant: base.Variant, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error from a sentinel template, a message, and an
// underlying cause.
func Wrap(base *Error, message string, err error) *Error {
	return &Error{Kind: base.Kind, Variant: base.Variant, Message: message, Err: err}
}

// Is reports whether err matches target using the standard errors.Is
// traversal, re-exported so callers don't need both "errors" and
// "goaperr" imports for the common case.
func Is(err, target error) bool {
	return stdErrors.Is(err, target)
}
