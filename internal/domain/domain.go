// Package domain defines the synchronized entity records and the transforms
// that build them from upstream API payloads.
//
// Every record carries a stable natural key (numeric or composite) and a
// minimal structural-validity predicate. The cache and store gateways are
// generic over these records: re-syncing the same key updates in place, and a
// cached blob that fails the validity predicate is discarded rather than
// trusted.
package domain

// Record is implemented by every synchronized entity.
type Record interface {
	// Key reports the record's natural key rendered as a stable string.
	// It doubles as the hash field under collection cache keys, so two
	// records with the same Key are the same logical entity.
	Key() string

	// Valid reports whether the record passes the minimal structural checks
	// a freshly transformed entity would: the natural key must be present
	// and numeric. Cached entries failing this are treated as misses.
	Valid() bool
}
