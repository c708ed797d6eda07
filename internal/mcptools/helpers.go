package mcptools

import (
	"strings"

	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/storage"
)

func toResult(e entry.Entry) EntryResult {
	at := e.Timestamp.Local()
	r := EntryResult{
		ID:     e.ID,
		Date:   at.Format("2006-01-02 15:04"),
		Period: entry.PeriodOf(at).String(),
		Text:   e.Text,
	}
	if a, ok := e.Annotated(); ok {
		r.Category = a.Category
		r.Translation = a.Translation
	}
	return r
}

// identityOr returns the requested identity, or fallback when none was given.
func identityOr(requested, fallback string) string {
	if strings.TrimSpace(requested) == "" {
		return storage.Identity(fallback)
	}
	return storage.Identity(requested)
}
