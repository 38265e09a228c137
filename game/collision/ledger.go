package collision

import (
	"strings"
	"time"
)

// DefaultCooldown is the minimum interval between two events of the same pair.
const DefaultCooldown = 100 * time.Millisecond

// Key identifies an interacting pair.
type Key string

// PairKey returns the key of two actors. The key does not depend on argument order.
func PairKey(a, b string) Key {
	if b < a {
		a, b = b, a
	}
	return Key(a + "|" + b)
}

// EntityKey returns the key of an actor touching an entity of the given kind.
func EntityKey(actorID string, kind CollisionKind, entityID string) Key {
	return Key(strings.Join([]string{actorID, string(kind), entityID}, "|"))
}

// Ledger remembers when each pair last collided.
// Entries are overwritten on each write and never expire; only Clear drops them.
type Ledger struct {
	entries map[Key]time.Time
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[Key]time.Time)}
}

// OnCooldown reports whether key collided less than cooldown before now.
// Unknown keys and non-positive cooldowns are never on cooldown.
func (l *Ledger) OnCooldown(key Key, now time.Time, cooldown time.Duration) bool {
	if cooldown <= 0 {
		return false
	}
	last, ok := l.entries[key]
	if !ok {
		return false
	}
	return now.Sub(last) < cooldown
}

// Record stores now as the last collision time of key.
func (l *Ledger) Record(key Key, now time.Time) {
	l.entries[key] = now
}

// RecordAndCheck reports the cooldown state of key and then records now regardless of the outcome.
// Continuous contact therefore keeps a pair on cooldown.
func (l *Ledger) RecordAndCheck(key Key, now time.Time, cooldown time.Duration) bool {
	onCooldown := l.OnCooldown(key, now, cooldown)
	l.Record(key, now)
	return onCooldown
}

// Last returns the last recorded time of key.
func (l *Ledger) Last(key Key) (time.Time, bool) {
	t, ok := l.entries[key]
	return t, ok
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.entries = make(map[Key]time.Time)
}
