package errs

import "errors"

// Translators are pure value transforms between layer envelopes. They never
// log and never drop the incoming error: the input always becomes the cause
// of the output. Kind mapping is coarse-to-coarse; messages ride along
// unchanged so the original description survives to the API boundary.

// storeToDomainKinds renames store-layer kinds into their domain equivalents.
// Anything unlisted passes through unchanged.
var storeToDomainKinds = map[Kind]Kind{
	KindQuery:      KindOperation,
	KindConstraint: KindValidation,
}

// StoreToDomain lifts a store-gateway failure into a domain envelope.
func StoreToDomain(err error) error {
	if err == nil {
		return nil
	}
	kind, message := kindAndMessage(err, KindOperation)
	if mapped, ok := storeToDomainKinds[kind]; ok {
		kind = mapped
	}
	return Wrap(LayerDomain, kind, message, err)
}

// CacheToDomain lifts a cache-gateway failure into a domain envelope.
// Serialization/deserialization kinds are preserved as-is so the orchestrator
// can tell a corrupt entry apart from an unreachable cache.
func CacheToDomain(err error) error {
	if err == nil {
		return nil
	}
	kind, message := kindAndMessage(err, KindOperation)
	return Wrap(LayerDomain, kind, message, err)
}

// DomainToService lifts a domain failure into a service envelope. Kinds map
// one-to-one at this hop; the value of the translation is the added layer tag
// and the preserved chain.
func DomainToService(err error) error {
	if err == nil {
		return nil
	}
	kind, message := kindAndMessage(err, KindOperation)
	return Wrap(LayerService, kind, message, err)
}

// kindAndMessage extracts the outermost envelope's kind and message, falling
// back to the given kind and the raw error text for non-envelope errors
// (e.g. a context.DeadlineExceeded straight from a driver).
func kindAndMessage(err error, fallback Kind) (Kind, string) {
	var envelope *Error
	if errors.As(err, &envelope) {
		return envelope.Kind, envelope.Message
	}
	return fallback, err.Error()
}
