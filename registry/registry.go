// Package registry implements the slave's fixed-capacity command
// dispatch table: a hash-keyed associative array with upsert semantics
// and no dynamic growth once constructed.
package registry

import "sync"

// Callback is the slave-side procedure ABI: it receives the call's input
// payload and must set *out to a slice it owns (typically within static
// storage) for the duration of the response. The caller guarantees *out
// remains valid at least until the result has been sent.
type Callback func(in []byte, out *[]byte)

type entry struct {
	key     uint32
	value   Callback
	present bool
}

// Table is a fixed-capacity array of (hash -> callback) entries. It never
// allocates after New: Register either overwrites an existing entry in
// place or appends into unused capacity. Registration may happen from a
// different goroutine than the one running Loop, so access is guarded by
// a mutex.
type Table struct {
	mu      sync.Mutex
	entries []entry
	used    int
}

// New returns a Table with room for exactly capacity entries.
func New(capacity int) *Table {
	return &Table{entries: make([]entry, capacity)}
}

// Capacity returns the table's fixed capacity.
func (t *Table) Capacity() int { return len(t.entries) }

// Len returns the number of registered entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used
}

// Register installs cb under key. If key already has an entry, its
// callback is overwritten in place and used does not grow. Otherwise, if
// capacity remains, a new entry is appended. Register returns false only
// when the table is full and key is not already present.
func (t *Table) Register(key uint32, cb Callback) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < t.used; i++ {
		if t.entries[i].key == key {
			t.entries[i].value = cb
			t.entries[i].present = cb != nil
			return true
		}
	}

	if t.used >= len(t.entries) {
		return false
	}

	t.entries[t.used] = entry{key: key, value: cb, present: cb != nil}
	t.used++
	return true
}

// Lookup scans linearly for an entry whose key matches and whose callback
// slot is non-empty, mirroring the slave's dispatch loop.
func (t *Table) Lookup(key uint32) (Callback, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < t.used; i++ {
		if t.entries[i].key == key && t.entries[i].present {
			return t.entries[i].value, true
		}
	}
	return nil, false
}
