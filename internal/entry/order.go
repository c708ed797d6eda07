package entry

// Collection is the ordered entry list. Index 0 is the oldest entry; an
// entry keeps its storage index for its whole lifetime.
type Collection []Entry

// DisplayIndex maps a storage index to its position in the newest-first view.
func DisplayIndex(length, storage int) int {
	return length - 1 - storage
}

// StorageIndex maps a newest-first display index back to a storage index.
func StorageIndex(length, display int) int {
	return length - 1 - display
}

// Len returns the number of entries.
func (c Collection) Len() int { return len(c) }

// AtDisplay returns the entry at the given display index.
func (c Collection) AtDisplay(display int) (Entry, bool) {
	i := StorageIndex(len(c), display)
	if i < 0 || i >= len(c) {
		return Entry{}, false
	}
	return c[i], true
}

// Display returns a newest-first copy of the collection.
func (c Collection) Display() []Entry {
	out := make([]Entry, len(c))
	for i := range c {
		out[DisplayIndex(len(c), i)] = c[i]
	}
	return out
}

// IndexOf returns the storage index of the entry with the given ID, or -1.
func (c Collection) IndexOf(id string) int {
	for i, e := range c {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no annotation pointers with c.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, e := range c {
		if e.Annotation != nil {
			a := *e.Annotation
			e.Annotation = &a
		}
		out[i] = e
	}
	return out
}
