// Package errs defines the layered error envelopes used across the
// synchronization core.
//
// Every gateway and service returns an *Error tagged with the layer it was
// produced at (store, cache, domain, service) and a coarse Kind. Each layer
// wraps the layer below's envelope as its cause; translation never discards a
// cause, so errors.As / HasKind can always walk back to the original failure.
//
// The package also defines HTTPError, the only error shape the REST surface
// ever serializes to clients.
package errs

import (
	"errors"
	"fmt"
)

// Kind is the coarse error taxonomy shared by every layer.
type Kind string

const (
	KindConnection      Kind = "connection"
	KindQuery           Kind = "query"
	KindOperation       Kind = "operation"
	KindConstraint      Kind = "constraint"
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindSerialization   Kind = "serialization"
	KindDeserialization Kind = "deserialization"
	KindIntegration     Kind = "integration"
	KindTransformation  Kind = "transformation"
)

// Layer identifies which abstraction boundary produced an envelope.
type Layer string

const (
	LayerStore   Layer = "store"
	LayerCache   Layer = "cache"
	LayerDomain  Layer = "domain"
	LayerService Layer = "service"
)

// Error is the tagged envelope carried between layers.
//
// Fields:
//   - Layer/Kind: where and what class of failure.
//   - Message: human-readable description, preserved verbatim across hops.
//   - Details: optional structured bag (entity, scope, key, table...).
//   - cause: the envelope (or raw driver error) from the layer below.
type Error struct {
	Layer   Layer
	Kind    Kind
	Message string
	Details map[string]any

	cause error
}

// New creates an envelope with no cause. Used at the layer where a failure
// originates (e.g. a validity check inside the cache gateway).
func New(layer Layer, kind Kind, message string) *Error {
	return &Error{Layer: layer, Kind: kind, Message: message}
}

// Wrap creates an envelope around a lower-layer error. The cause is retained
// for Unwrap; callers must not pass nil.
func Wrap(layer Layer, kind Kind, message string, cause error) *Error {
	return &Error{Layer: layer, Kind: kind, Message: message, cause: cause}
}

// WithDetail attaches one structured detail and returns the same envelope so
// calls can be chained at construction sites.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, 2)
	}
	e.Details[key] = value
	return e
}

// Error implements the error interface. The cause is included so plain log
// output still shows the chain even without structured walking.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s/%s: %s: %v", e.Layer, e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s/%s: %s", e.Layer, e.Kind, e.Message)
}

// Unwrap exposes the cause to the errors package, forming the cause chain.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause reports the wrapped lower-layer error, nil at the origin.
func (e *Error) Cause() error {
	return e.cause
}

// HasKind reports whether err, or any error in its cause chain, is an *Error
// of the given kind. Inspecting only the outermost envelope is not enough:
// a store not-found wrapped in a service operation error must still be
// recognizable as not-found.
func HasKind(err error, kind Kind) bool {
	for err != nil {
		var envelope *Error
		if !errors.As(err, &envelope) {
			return false
		}
		if envelope.Kind == kind {
			return true
		}
		err = envelope.Unwrap()
	}
	return false
}

// KindOf reports the outermost envelope's kind, or KindOperation when err is
// not an *Error.
func KindOf(err error) Kind {
	var envelope *Error
	if errors.As(err, &envelope) {
		return envelope.Kind
	}
	return KindOperation
}
