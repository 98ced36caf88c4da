package internal

import "slices"

// Entry is anything a Sink can hold: each entry carries a stable ID
// assigned when it is revealed
type Entry interface {
	EntryID() string
}

// Sink is the ordered list of entries revealed by a playback session.
// It is append-only apart from Update and is not safe for concurrent use;
// the owning Player guards it.
type Sink[E Entry] struct {
	entries []E
	index   map[string]int
}

// NewSink creates an empty sink
func NewSink[E Entry]() *Sink[E] {
	return &Sink[E]{index: make(map[string]int)}
}

// Append adds e to the end of the sink
func (s *Sink[E]) Append(e E) {
	s.index[e.EntryID()] = len(s.entries)
	s.entries = append(s.entries, e)
}

// Update replaces the entry with the given ID by fn(entry). It reports
// false when no such entry exists.
func (s *Sink[E]) Update(id string, fn func(E) E) (E, bool) {
	i, ok := s.index[id]
	if !ok {
		var zero E
		return zero, false
	}
	s.entries[i] = fn(s.entries[i])
	return s.entries[i], true
}

// Get returns the entry with the given ID
func (s *Sink[E]) Get(id string) (E, bool) {
	i, ok := s.index[id]
	if !ok {
		var zero E
		return zero, false
	}
	return s.entries[i], true
}

// Clear drops every entry
func (s *Sink[E]) Clear() {
	s.entries = nil
	clear(s.index)
}

// Len returns the number of entries
func (s *Sink[E]) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the entries in reveal order
func (s *Sink[E]) Entries() []E {
	return slices.Clone(s.entries)
}
