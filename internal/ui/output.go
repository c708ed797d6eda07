package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/speech"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

const listPreviewWidth = 60

var periodColors = map[entry.Period]*color.Color{
	entry.Morning:   color.New(color.FgHiYellow),
	entry.Afternoon: color.New(color.FgYellow),
	entry.Evening:   color.New(color.FgMagenta),
	entry.Night:     color.New(color.FgBlue),
}

// FormatEntryList writes the collection newest first as a table.
func FormatEntryList(w io.Writer, c entry.Collection) {
	if c.Len() == 0 {
		fmt.Fprintln(w, "No entries yet.")
		return
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint, color.Italic)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("WRITTEN"), bold.Sprint("PERIOD"), bold.Sprint("ENTRY"), bold.Sprint("CATEGORY"))
	for _, e := range c.Display() {
		at := e.Timestamp.Local()
		p := entry.PeriodOf(at)
		category := ""
		if a, ok := e.Annotated(); ok {
			category = faint.Sprint(a.Category)
		}
		tbl.AddRow(e.ID, at.Format("2006-01-02 15:04"), periodColors[p].Sprint(p), e.Preview(listPreviewWidth), category)
	}
	fmt.Fprintln(w, tbl)
}

// FormatVoices writes the engine's voices, marking the one in use.
func FormatVoices(w io.Writer, voices []speech.Voice, chosen speech.Voice) {
	if len(voices) == 0 {
		fmt.Fprintf(w, "No voices reported; speaking with language %s.\n", chosen.Lang)
		return
	}
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", bold.Sprint("VOICE"), bold.Sprint("LANGUAGE"))
	for _, v := range voices {
		mark := ""
		if v == chosen {
			mark = color.New(color.FgGreen).Sprint("*")
		}
		tbl.AddRow(mark, v.Name, v.Lang)
	}
	fmt.Fprintln(w, tbl)
}

// FormatJSON writes any value as JSON to the writer.
func FormatJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EntrySummary is the JSON shape of an entry in list output.
type EntrySummary struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Date        string    `json:"date"`
	Period      string    `json:"period"`
	Text        string    `json:"text"`
	Category    string    `json:"category,omitempty"`
	Translation string    `json:"translation,omitempty"`
}

// NewEntrySummary converts one entry for JSON output.
func NewEntrySummary(e entry.Entry) EntrySummary {
	at := e.Timestamp.Local()
	s := EntrySummary{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Date:      entry.CardDate(at),
		Period:    entry.PeriodOf(at).String(),
		Text:      e.Text,
	}
	if a, ok := e.Annotated(); ok {
		s.Category = a.Category
		s.Translation = a.Translation
	}
	return s
}

// ToSummaries converts the collection newest first, keeping at most limit
// entries when limit is positive.
func ToSummaries(c entry.Collection, limit int) []EntrySummary {
	display := c.Display()
	if limit > 0 && limit < len(display) {
		display = display[:limit]
	}
	out := make([]EntrySummary, len(display))
	for i, e := range display {
		out[i] = NewEntrySummary(e)
	}
	return out
}
