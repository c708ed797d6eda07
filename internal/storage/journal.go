package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/chris-regnier/murmur/internal/entry"
)

// Journal binds a Store to a single identity.
type Journal struct {
	store    Store
	identity string
	log      *slog.Logger
}

// NewJournal returns a Journal for the normalized form of identity.
func NewJournal(s Store, identity string, log *slog.Logger) *Journal {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	id := Identity(identity)
	return &Journal{store: s, identity: id, log: log.With("identity", id)}
}

// Identity returns the normalized identity.
func (j *Journal) Identity() string { return j.identity }

// Load returns the stored collection. Missing or unreadable documents
// produce an empty collection; the failure is only logged.
func (j *Journal) Load() entry.Collection {
	c, err := j.store.Load(j.identity)
	if err != nil {
		j.log.Warn("loading journal, starting empty", "err", err)
		return entry.Collection{}
	}
	j.log.Debug("journal loaded", "entries", len(c))
	return c
}

// Save overwrites the stored collection.
func (j *Journal) Save(c entry.Collection) error {
	if err := j.store.Save(j.identity, c); err != nil {
		j.log.Error("saving journal", "err", err)
		return err
	}
	j.log.Debug("journal saved", "entries", len(c))
	return nil
}

// Entries loads the collection strictly, returning read errors instead of
// substituting an empty collection.
func (j *Journal) Entries() (entry.Collection, error) {
	return j.store.Load(j.identity)
}

// Annotate attaches an annotation to the entry with the given ID and saves
// the journal. A corrupt document is never overwritten.
func (j *Journal) Annotate(id string, a entry.Annotation) (entry.Entry, error) {
	c, err := j.store.Load(j.identity)
	if err != nil {
		return entry.Entry{}, err
	}
	i := c.IndexOf(id)
	if i < 0 {
		return entry.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c[i].Annotation = &a
	if err := j.store.Save(j.identity, c); err != nil {
		return entry.Entry{}, err
	}
	j.log.Info("entry annotated", "id", id, "category", a.Category)
	return c[i], nil
}

// Watch forwards change notifications when the underlying store supports
// them. It returns a nil channel otherwise.
func (j *Journal) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, ok := j.store.(Watcher)
	if !ok {
		return nil, nil
	}
	ch, err := w.Watch(ctx, j.identity)
	if err != nil {
		return nil, fmt.Errorf("%w: watching journal: %v", ErrStorage, err)
	}
	return ch, nil
}

// IsCorrupt reports whether err came from an unreadable document.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}
