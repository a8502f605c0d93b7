// Package store keeps the durable ledger of listing identifiers that were
// already reported. Entries are only ever added; MarkSeen changes memory and
// Persist flushes the whole mapping.
package store

import "time"

// TimestampLayout is the format of first-seen timestamps
const TimestampLayout = "2006-01-02 15:04:05"

// Record maps a listing identifier to its first-seen timestamp
type Record map[string]string

// Clone returns an independent copy
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// SeenStore is the dedup ledger used by the extractor and the scheduler
type SeenStore interface {
	// Load reads the persisted mapping into memory. It never fails: a missing
	// backing resource is empty history and a corrupted one is reset.
	Load() Record

	// Contains reports whether id was seen before
	Contains(id string) bool

	// MarkSeen records id in memory only
	MarkSeen(id, timestamp string)

	// Persist writes the full in-memory mapping to the backing resource
	Persist() error

	// Snapshot returns a copy of the in-memory mapping
	Snapshot() Record

	// Close releases the backing resource
	Close() error
}

// Now formats t the way the ledger stores it
func Now(t time.Time) string {
	return t.Format(TimestampLayout)
}
