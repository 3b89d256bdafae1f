package cache

import "fmt"

// Keys builds the cache key layout for one entity kind within one season.
//
// The season segment keeps keys from colliding across seasons without any
// flush on rollover; the prefix is the entity kind (e.g. "players", "live").
type Keys struct {
	Prefix string
	Season string
}

// Collection is the key holding the full "all records" hash:
// `{prefix}::{season}`.
func (k Keys) Collection() string {
	return fmt.Sprintf("%s::%s", k.Prefix, k.Season)
}

// Scoped is the key holding one scope's sub-collection hash:
// `{prefix}::{season}::{scope}` (e.g. one event's live stats).
func (k Keys) Scoped(scope string) string {
	return fmt.Sprintf("%s::%s::%s", k.Prefix, k.Season, scope)
}

// Pointer is the key holding a single serialized record, such as the
// current-event pointer: `{prefix}::{season}::{tag}`.
func (k Keys) Pointer(tag string) string {
	return k.Scoped(tag)
}

// For resolves a scope to its key: an empty scope means the whole collection.
func (k Keys) For(scope string) string {
	if scope == "" {
		return k.Collection()
	}
	return k.Scoped(scope)
}
