package event

import "strings"

// TagList is an ordered set of tag strings. Entries are unique by exact
// case-sensitive match and keep insertion order.
type TagList struct {
	items []string
}

// Add trims the input and appends it to the end of the list. It reports
// false, leaving the list unchanged, when the trimmed value is empty or
// already present.
func (l *TagList) Add(raw string) bool {
	tag := strings.TrimSpace(raw)
	if tag == "" {
		return false
	}
	for _, existing := range l.items {
		if existing == tag {
			return false
		}
	}
	l.items = append(l.items, tag)
	return true
}

// Remove deletes the entry equal to value. Because Add enforces uniqueness
// there is at most one such entry. Reports whether anything was removed.
func (l *TagList) Remove(value string) bool {
	for i, existing := range l.items {
		if existing == value {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a copy of the tags in insertion order.
func (l *TagList) Items() []string {
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of tags.
func (l *TagList) Len() int {
	return len(l.items)
}

// AgendaList is an ordered list of schedule entries. Order is chronological
// and therefore significant; duplicate text is permitted, so entries are
// addressed by position rather than value.
type AgendaList struct {
	items []string
}

// Add trims the input and appends it to the end of the list. It reports
// false, leaving the list unchanged, when the trimmed value is empty.
func (l *AgendaList) Add(raw string) bool {
	item := strings.TrimSpace(raw)
	if item == "" {
		return false
	}
	l.items = append(l.items, item)
	return true
}

// RemoveAt deletes the entry at index i, shifting subsequent entries down.
// Reports false when i is out of range.
func (l *AgendaList) RemoveAt(i int) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

// Items returns a copy of the entries in insertion order.
func (l *AgendaList) Items() []string {
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of entries.
func (l *AgendaList) Len() int {
	return len(l.items)
}
