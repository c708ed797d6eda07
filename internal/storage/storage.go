package storage

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chris-regnier/murmur/internal/entry"
)

// Sentinel errors for storage operations.
var (
	ErrNotFound   = errors.New("entry not found")
	ErrStorage    = errors.New("storage error")
	ErrCorrupt    = errors.New("corrupt journal document")
	ErrValidation = errors.New("validation error")
)

// DefaultIdentity is used when no identity is supplied.
const DefaultIdentity = "Nameless"

const keyPrefix = "diary_"

// Store persists one ordered entry collection per identity. Save always
// overwrites the whole document.
type Store interface {
	// Load returns the collection for identity. A missing document yields an
	// empty collection and a nil error; an unreadable one yields an empty
	// collection and an error wrapping ErrCorrupt.
	Load(identity string) (entry.Collection, error)
	Save(identity string, c entry.Collection) error
	Close() error
}

// Watcher is implemented by stores that can report changes made to a
// journal by another process.
type Watcher interface {
	// Watch signals on the returned channel whenever the identity's document
	// changes on disk. The channel is closed once ctx is done.
	Watch(ctx context.Context, identity string) (<-chan struct{}, error)
}

// Identity normalizes a user-supplied identity.
func Identity(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return DefaultIdentity
	}
	return id
}

// Key returns the document key for an identity.
func Key(identity string) string {
	return keyPrefix + Identity(identity)
}

// Document is the persisted shape of a journal.
type Document struct {
	Entries []entry.Entry `json:"entries"`
}

// Validate checks every entry before it is written.
func Validate(c entry.Collection) error {
	seen := make(map[string]struct{}, len(c))
	for i, e := range c {
		if err := entry.ValidateID(e.ID); err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrValidation, i, err)
		}
		if err := entry.ValidateText(e.Text); err != nil {
			return fmt.Errorf("%w: entry %s: %v", ErrValidation, e.ID, err)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate entry ID %s", ErrValidation, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// Encode serializes a collection as a JSON document.
func Encode(c entry.Collection) ([]byte, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	doc := Document{Entries: c}
	if doc.Entries == nil {
		doc.Entries = entry.Collection{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encoding journal: %v", ErrStorage, err)
	}
	return data, nil
}

// Decode parses a JSON document. Blank input is an empty journal.
func Decode(data []byte) (entry.Collection, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return entry.Collection{}, nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return entry.Collection{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	seen := make(map[string]bool, len(doc.Entries))
	for i, e := range doc.Entries {
		if strings.TrimSpace(e.Text) == "" || e.Timestamp.IsZero() {
			return entry.Collection{}, fmt.Errorf("%w: entry %d is incomplete", ErrCorrupt, i)
		}
		seen[e.ID] = true
	}
	// Documents written before entries carried IDs. The ID is derived from
	// position and timestamp so every load agrees on it until a save
	// persists it.
	for i, e := range doc.Entries {
		if e.ID != "" {
			continue
		}
		id := legacyID(i, e.Timestamp, 0)
		for salt := 1; seen[id]; salt++ {
			id = legacyID(i, e.Timestamp, salt)
		}
		seen[id] = true
		doc.Entries[i].ID = id
	}
	if doc.Entries == nil {
		return entry.Collection{}, nil
	}
	return entry.Collection(doc.Entries), nil
}

func legacyID(index int, ts time.Time, salt int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%d", index, ts.UTC().Format(time.RFC3339Nano), salt)))
	id := strconv.FormatUint(binary.BigEndian.Uint64(sum[:8]), 36)
	for len(id) < 8 {
		id = "0" + id
	}
	return id[:8]
}
