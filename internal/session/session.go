// Package session is the interactive core of the journal: it decides what
// every key does in each mode, keeps the selection in step with the entry
// list, persists changes and drives narration.
package session

import (
	"io"
	"log/slog"
	"time"

	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/speech"
)

// Mode is the current use of the input surface.
type Mode int

const (
	Composing Mode = iota
	Browsing
	Editing
)

func (m Mode) String() string {
	switch m {
	case Composing:
		return "composing"
	case Browsing:
		return "browsing"
	case Editing:
		return "editing"
	}
	return "unknown"
}

// Narrator runs speech chains. *speech.Pipeline implements it.
type Narrator interface {
	Start(c speech.Chain)
	Cancel()
}

// Projector draws the entry list. It is called after every state change.
type Projector interface {
	Render(mode Mode, entries entry.Collection, selected int)
}

// Buffer is the text input surface.
type Buffer interface {
	Value() string
	SetValue(s string)
	// BeforeCursor returns the text left of the cursor.
	BeforeCursor() string
}

// Saver persists the whole collection.
type Saver interface {
	Save(c entry.Collection) error
}

// State is the session's owned interaction state.
type State struct {
	Mode Mode
	// Selected is a display index; -1 while composing.
	Selected int
	// Editing is the storage index under edit; -1 outside Editing.
	Editing int
	// LastSpoken is the last token echoed while typing.
	LastSpoken string
}

// Options tunes a Session. Zero values select the defaults.
type Options struct {
	Narrate speech.Profile
	Echo    speech.Profile
	Now     func() time.Time
	Logger  *slog.Logger
}

// Session owns the entry collection and the interaction state for one run.
// It is not safe for concurrent use; call it from the UI event loop only.
type Session struct {
	state   State
	entries entry.Collection

	saver     Saver
	narrator  Narrator
	projector Projector
	buffer    Buffer

	narrate speech.Profile
	echo    speech.Profile
	now     func() time.Time
	log     *slog.Logger

	err error
}

// New builds a session over an already loaded collection. It starts in
// Composing.
func New(entries entry.Collection, saver Saver, narrator Narrator, projector Projector, buffer Buffer, opts Options) *Session {
	if entries == nil {
		entries = entry.Collection{}
	}
	if opts.Narrate == (speech.Profile{}) {
		opts.Narrate = speech.Solemn
	}
	if opts.Echo == (speech.Profile{}) {
		opts.Echo = speech.Echo
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		state:     State{Mode: Composing, Selected: -1, Editing: -1},
		entries:   entries,
		saver:     saver,
		narrator:  narrator,
		projector: projector,
		buffer:    buffer,
		narrate:   opts.Narrate,
		echo:      opts.Echo,
		now:       opts.Now,
		log:       opts.Logger,
	}
}

// Start draws the initial view.
func (s *Session) Start() { s.render() }

// State returns a copy of the interaction state.
func (s *Session) State() State { return s.state }

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.state.Mode }

// Selected returns the selected display index, or -1.
func (s *Session) Selected() int { return s.state.Selected }

// Entries returns a copy of the collection in storage order.
func (s *Session) Entries() entry.Collection { return s.entries.Clone() }

// Err returns the last save failure, cleared by the next successful save.
func (s *Session) Err() error { return s.err }

// SelectedEntry returns the entry under the selection, if any.
func (s *Session) SelectedEntry() (entry.Entry, bool) {
	if s.state.Mode == Composing {
		return entry.Entry{}, false
	}
	return s.entries.AtDisplay(s.state.Selected)
}

// MergeAnnotations copies annotations from a freshly loaded collection onto
// matching entries. Entries match by ID and only while their text is
// unchanged; nothing else in fresh is applied. It reports whether anything
// changed and re-renders if so.
func (s *Session) MergeAnnotations(fresh entry.Collection) bool {
	byID := make(map[string]entry.Entry, len(fresh))
	for _, e := range fresh {
		byID[e.ID] = e
	}
	changed := false
	for i, cur := range s.entries {
		f, ok := byID[cur.ID]
		if !ok || f.Text != cur.Text {
			continue
		}
		fa, fok := f.Annotated()
		ca, cok := cur.Annotated()
		if fok == cok && fa == ca {
			continue
		}
		if fok {
			s.entries[i].Annotation = &fa
		} else {
			s.entries[i].Annotation = nil
		}
		changed = true
	}
	if changed {
		s.log.Debug("annotations merged")
		s.render()
	}
	return changed
}

func (s *Session) setMode(m Mode) {
	s.state.Mode = m
	s.state.LastSpoken = ""
	switch m {
	case Browsing:
		s.state.Editing = -1
		if s.state.Selected < 0 {
			s.state.Selected = 0
		}
		s.clampSelection()
	case Composing:
		s.state.Selected = -1
		s.state.Editing = -1
		s.buffer.SetValue("")
	}
	s.render()
}

func (s *Session) clampSelection() {
	if s.state.Selected >= len(s.entries) {
		s.state.Selected = len(s.entries) - 1
	}
	if s.state.Selected < 0 {
		s.state.Selected = 0
	}
}

func (s *Session) render() {
	s.projector.Render(s.state.Mode, s.entries, s.state.Selected)
}

func (s *Session) save() {
	if err := s.saver.Save(s.entries); err != nil {
		s.log.Error("saving journal", "err", err)
		s.err = err
		return
	}
	s.err = nil
}

// speakEntry narrates e followed by its spoken date line.
func (s *Session) speakEntry(e entry.Entry, onDone func()) {
	s.narrator.Start(speech.Chain{
		Parts:   []string{e.Text, entry.SpeechDate(e.Timestamp.Local())},
		Profile: s.narrate,
		OnDone:  onDone,
	})
}

// advance moves the selection to the next older entry when narration of a
// browsed entry completes.
func (s *Session) advance() {
	if s.state.Mode != Browsing || s.state.Selected >= len(s.entries)-1 {
		return
	}
	s.state.Selected++
	s.render()
}
