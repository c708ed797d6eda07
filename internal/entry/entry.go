package entry

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 8
)

var idPattern = regexp.MustCompile(`^[a-z0-9]{8}$`)

// Annotation is the enrichment payload attached to an entry by an external
// collaborator. Entries without enrichment carry a nil *Annotation.
type Annotation struct {
	Category    string `json:"category"`
	Translation string `json:"translation,omitempty"`
}

// Entry represents a single journaled note.
type Entry struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	Text       string      `json:"text"`
	Annotation *Annotation `json:"annotations,omitempty"`
}

// NewID generates a new nanoid for an entry.
func NewID() (string, error) {
	return gonanoid.Generate(idAlphabet, idLength)
}

// ValidateID checks whether an ID matches the expected pattern.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid entry ID: %q (must be 8 lowercase alphanumeric characters)", id)
	}
	return nil
}

// ValidateText checks whether text is non-empty.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("entry text must not be empty")
	}
	return nil
}

// New creates an entry stamped at the given time with a fresh ID.
func New(text string, at time.Time) (Entry, error) {
	text = strings.TrimSpace(text)
	if err := ValidateText(text); err != nil {
		return Entry{}, err
	}
	id, err := NewID()
	if err != nil {
		return Entry{}, fmt.Errorf("generating ID: %w", err)
	}
	return Entry{ID: id, Timestamp: at, Text: text}, nil
}

// Annotated reports the entry's annotation and whether one is present.
func (e Entry) Annotated() (Annotation, bool) {
	if e.Annotation == nil {
		return Annotation{}, false
	}
	return *e.Annotation, true
}

// Preview returns a truncated single-line preview of the entry text.
func (e Entry) Preview(maxLen int) string {
	text := []rune(strings.Join(strings.Fields(e.Text), " "))
	if len(text) <= maxLen {
		return string(text)
	}
	if maxLen <= 3 {
		return string(text[:max(maxLen, 0)])
	}
	return string(text[:maxLen-3]) + "..."
}
