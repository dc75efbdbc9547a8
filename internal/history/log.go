package history

import "slices"

// DefaultLimit is the number of entries a Log keeps unless told otherwise.
const DefaultLimit = 100

// Log is an in-memory list of entries ordered newest first. It is not safe
// for concurrent use; the owning session serializes access.
type Log struct {
	entries []Entry
	limit   int
}

// NewLog returns a log capped at limit entries, seeded with entries (newest
// first). A non-positive limit means DefaultLimit.
func NewLog(limit int, entries []Entry) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	l := &Log{limit: limit}
	l.entries = append(l.entries, entries...)
	l.trim()
	return l
}

// Add puts e at the front and evicts the oldest entries beyond the limit.
func (l *Log) Add(e Entry) {
	l.entries = slices.Insert(l.entries, 0, e)
	l.trim()
}

// Delete removes the entry with the given id and reports whether it existed.
func (l *Log) Delete(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.entries = slices.Delete(l.entries, i, i+1)
	return true
}

// Get looks an entry up by id.
func (l *Log) Get(id string) (Entry, bool) {
	i := l.index(id)
	if i < 0 {
		return Entry{}, false
	}
	return l.entries[i], true
}

func (l *Log) Clear() {
	l.entries = nil
}

func (l *Log) Len() int {
	return len(l.entries)
}

func (l *Log) Limit() int {
	return l.limit
}

// Entries returns a copy, newest first.
func (l *Log) Entries() []Entry {
	return append(make([]Entry, 0, len(l.entries)), l.entries...)
}

func (l *Log) index(id string) int {
	return slices.IndexFunc(l.entries, func(e Entry) bool { return e.ID == id })
}

func (l *Log) trim() {
	if len(l.entries) > l.limit {
		l.entries = slices.Clip(l.entries[:l.limit])
	}
}
