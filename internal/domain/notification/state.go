// Package notification holds the durable per-address notification state and
// the gate that decides whether a run should announce a collection.
package notification

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// SnapshotLimit bounds the schedule snapshot stored with the state, in bytes.
const SnapshotLimit = 3500

// State is the per-address durable record. LastNotified is the sole source
// of truth for "already notified"; under normal (non-forced) operation it
// only ever advances. Snapshot is an opaque bounded rendering of the last
// schedule seen, kept for diagnostics only.
type State struct {
	AddressKey   string
	LastNotified time.Time // zero value means never notified
	Snapshot     string
}

// AddressConfig is one registered address: a human label (what gets typed
// into the form) and who to email about it. Supplied by configuration,
// read-only to the core.
type AddressConfig struct {
	Label      string   `json:"label"`
	Recipients []string `json:"recipients"`
}

// AddressKey derives the storage key for an address label: a deterministic
// one-way digest, so the store never holds the address in cleartext.
func AddressKey(label string) string {
	sum := sha256.Sum256([]byte(label))
	return hex.EncodeToString(sum[:])
}

// TruncateSnapshot bounds a snapshot string to SnapshotLimit bytes.
func TruncateSnapshot(s string) string {
	if len(s) <= SnapshotLimit {
		return s
	}
	return s[:SnapshotLimit]
}
