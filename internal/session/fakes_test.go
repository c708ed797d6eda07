package session

import (
	"errors"
	"time"

	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/speech"
)

type fakeNarrator struct {
	chains  []speech.Chain
	cancels int
}

func (n *fakeNarrator) Start(c speech.Chain) {
	n.Cancel()
	n.chains = append(n.chains, c)
}

func (n *fakeNarrator) Cancel() { n.cancels++ }

// spoken flattens every part handed to the narrator.
func (n *fakeNarrator) spoken() []string {
	var out []string
	for _, c := range n.chains {
		out = append(out, c.Parts...)
	}
	return out
}

// finish completes the most recent chain as if speech ended naturally.
func (n *fakeNarrator) finish() {
	if len(n.chains) == 0 {
		return
	}
	if done := n.chains[len(n.chains)-1].OnDone; done != nil {
		done()
	}
}

type render struct {
	mode     Mode
	n        int
	selected int
}

type fakeProjector struct {
	renders []render
}

func (p *fakeProjector) Render(mode Mode, entries entry.Collection, selected int) {
	p.renders = append(p.renders, render{mode: mode, n: len(entries), selected: selected})
}

func (p *fakeProjector) last() render {
	if len(p.renders) == 0 {
		return render{}
	}
	return p.renders[len(p.renders)-1]
}

// fakeBuffer models a single-line input with the cursor at the end.
type fakeBuffer struct {
	value string
}

func (b *fakeBuffer) Value() string { return b.value }
func (b *fakeBuffer) SetValue(s string) { b.value = s }
func (b *fakeBuffer) BeforeCursor() string { return b.value }

type fakeSaver struct {
	saved []entry.Collection
	err   error
}

func (s *fakeSaver) Save(c entry.Collection) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, c.Clone())
	return nil
}

var errDiskFull = errors.New("disk full")

type fixture struct {
	s         *Session
	narrator  *fakeNarrator
	projector *fakeProjector
	buffer    *fakeBuffer
	saver     *fakeSaver
	now       time.Time
}

func newFixture(entries entry.Collection) *fixture {
	f := &fixture{
		narrator:  &fakeNarrator{},
		projector: &fakeProjector{},
		buffer:    &fakeBuffer{},
		saver:     &fakeSaver{},
		now:       time.Date(2026, 1, 15, 19, 5, 0, 0, time.Local),
	}
	f.s = New(entries, f.saver, f.narrator, f.projector, f.buffer, Options{
		Now: func() time.Time { return f.now },
	})
	f.s.Start()
	return f
}

// typeText feeds text through Key the way the UI does: the session sees
// each key before the input widget inserts it.
func (f *fixture) typeText(text string) {
	for _, r := range text {
		k := Printable(r)
		if r == ' ' {
			k = Key{Name: "space", Rune: ' '}
		}
		if f.s.Key(k) {
			f.buffer.value += string(r)
		}
	}
}

func (f *fixture) press(names ...string) {
	for _, n := range names {
		f.s.Key(Key{Name: n})
	}
}

func threeEntries() entry.Collection {
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.Local)
	return entry.Collection{
		{ID: "entry000", Text: "E0", Timestamp: base},
		{ID: "entry001", Text: "E1", Timestamp: base.AddDate(0, 0, 1)},
		{ID: "entry002", Text: "E2", Timestamp: base.AddDate(0, 0, 2)},
	}
}
