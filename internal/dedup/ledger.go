package dedup

// Ledger is the bounded dispatch history: canonical links of items that were
// already delivered at least once. Membership checks are O(1); insertion
// order is preserved so the oldest entries are evicted first when the bound
// is exceeded.
type Ledger struct {
	entries []string
	seen    map[string]struct{}
	limit   int
}

// NewLedger creates an empty ledger bounded to limit entries.
func NewLedger(limit int) *Ledger {
	return &Ledger{
		entries: make([]string, 0),
		seen:    make(map[string]struct{}),
		limit:   limit,
	}
}

// FromEntries builds a ledger from a persisted history list. Non-string
// entries were already filtered by the caller; duplicates collapse to their
// first occurrence. The loaded list is truncated to the most recent entries
// when it exceeds the bound.
func FromEntries(entries []string, limit int) *Ledger {
	l := NewLedger(limit)
	for _, entry := range entries {
		l.Add(entry)
	}
	return l
}

// Contains reports whether an identifier was already dispatched.
func (l *Ledger) Contains(id string) bool {
	_, ok := l.seen[id]
	return ok
}

// Add records an identifier. Adding an identifier that is already present or
// empty is a no-op, so repeated dispatch attempts never grow the ledger.
func (l *Ledger) Add(id string) {
	if id == "" || l.Contains(id) {
		return
	}
	l.entries = append(l.entries, id)
	l.seen[id] = struct{}{}
	l.evict()
}

// Len returns the number of retained identifiers.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Snapshot returns the retained identifiers in insertion order, bounded to
// the configured limit. The returned slice is a copy safe to persist.
func (l *Ledger) Snapshot() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) evict() {
	if l.limit <= 0 || len(l.entries) <= l.limit {
		return
	}
	drop := len(l.entries) - l.limit
	for _, old := range l.entries[:drop] {
		delete(l.seen, old)
	}
	l.entries = append(l.entries[:0:0], l.entries[drop:]...)
}
