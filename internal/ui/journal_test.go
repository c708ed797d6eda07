package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chris-regnier/murmur/internal/config"
	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/session"
	"github.com/chris-regnier/murmur/internal/speech"
	"github.com/chris-regnier/murmur/internal/storage"
	"github.com/chris-regnier/murmur/internal/storage/kv"
)

// recordingSynth finishes every utterance at once and reports its text.
type recordingSynth struct {
	said chan string
}

func (s *recordingSynth) Voices(context.Context) ([]speech.Voice, error) { return nil, nil }

func (s *recordingSynth) Say(_ context.Context, u speech.Utterance) error {
	s.said <- u.Text
	return nil
}

type failingStore struct{}

var errReadOnly = errors.New("read-only file system")

func (failingStore) Load(string) (entry.Collection, error) { return entry.Collection{}, nil }
func (failingStore) Save(string, entry.Collection) error   { return errReadOnly }
func (failingStore) Close() error                          { return nil }

type harness struct {
	m       *journalModel
	journal *storage.Journal
	synth   *recordingSynth
	posts   chan any
}

var testNow = time.Date(2026, 1, 15, 19, 5, 0, 0, time.Local)

func newHarness(t *testing.T, store storage.Store, seed ...string) *harness {
	t.Helper()
	j := storage.NewJournal(store, "Ada", nil)
	if len(seed) > 0 {
		c := entry.Collection{}
		for i, text := range seed {
			e, err := entry.New(text, testNow.Add(time.Duration(i-len(seed))*time.Hour))
			if err != nil {
				t.Fatal(err)
			}
			c = append(c, e)
		}
		if err := j.Save(c); err != nil {
			t.Fatal(err)
		}
	}

	h := &harness{
		journal: j,
		synth:   &recordingSynth{said: make(chan string, 32)},
		posts:   make(chan any, 32),
	}
	p := speech.NewPipeline(h.synth, 0, nil)
	p.Attach(func(msg any) { h.posts <- msg })
	t.Cleanup(p.Cancel)

	h.m = newJournalModel(j, p, JournalConfig{
		Identity: "Ada",
		Theme:    ResolveTheme(config.ThemeConfig{Preset: "default-dark"}),
		Now:      func() time.Time { return testNow },
	})
	h.m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

func newKVHarness(t *testing.T, seed ...string) *harness {
	t.Helper()
	store, err := kv.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return newHarness(t, store, seed...)
}

func (h *harness) press(msgs ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = h.m.Update(msg)
	}
	return cmd
}

func (h *harness) typeText(text string) {
	for _, r := range text {
		if r == ' ' {
			h.press(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		h.press(runeKey(r))
	}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
)

func (h *harness) nextSaid(t *testing.T) string {
	t.Helper()
	select {
	case s := <-h.synth.said:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("nothing was spoken")
		return ""
	}
}

// pump delivers posted pipeline messages until the wanted utterance is
// spoken.
func (h *harness) pumpUntilSaid(t *testing.T, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-h.synth.said:
			if s == want {
				return
			}
		case msg := <-h.posts:
			h.m.Update(msg)
		case <-deadline:
			t.Fatalf("%q was never spoken", want)
		}
	}
}

func (h *harness) view() string { return stripANSI(h.m.View()) }

func TestHeader(t *testing.T) {
	tests := []struct {
		identity string
		n        int
		want     string
	}{
		{"", 0, "My diary (0 posts)"},
		{"  ", 2, "My diary (2 posts)"},
		{"Ada", 1, "Ada's Diary (1 post)"},
		{" Ada ", 3, "Ada's Diary (3 posts)"},
	}
	for _, tt := range tests {
		if got := Header(tt.identity, tt.n); got != tt.want {
			t.Errorf("Header(%q, %d) = %q, want %q", tt.identity, tt.n, got, tt.want)
		}
	}
}

func TestKeyFromMsg(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want session.Key
	}{
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, session.Key{Name: "esc"}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, session.Key{Name: "enter"}},
		{"alt+enter", tea.KeyMsg{Type: tea.KeyEnter, Alt: true}, session.Key{Name: "enter", Mod: true}},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, session.Key{Name: "space", Rune: ' '}},
		{"up", tea.KeyMsg{Type: tea.KeyUp}, session.Key{Name: "up"}},
		{"down", tea.KeyMsg{Type: tea.KeyDown}, session.Key{Name: "down"}},
		{"letter", runeKey('t'), session.Key{Name: "t", Rune: 't'}},
		{"punctuation", runeKey('!'), session.Key{Name: "!", Rune: '!'}},
		{"alt letter", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}, Alt: true}, session.Key{Name: "x", Rune: 'x', Mod: true}},
		{"paste", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("pasted text"), Paste: true}, session.Key{Name: "paste"}},
		{"ctrl", tea.KeyMsg{Type: tea.KeyCtrlA}, session.Key{Name: "ctrl+a", Mod: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keyFromMsg(tt.msg); got != tt.want {
				t.Errorf("keyFromMsg() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestViewBeforeSize(t *testing.T) {
	store, err := kv.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m := newJournalModel(storage.NewJournal(store, "", nil), speech.NewPipeline(nil, 0, nil), JournalConfig{})
	if got := m.View(); got != "Loading..." {
		t.Errorf("expected loading view, got %q", got)
	}
}

func TestComposeAndCommit(t *testing.T) {
	h := newKVHarness(t)
	if !strings.Contains(h.view(), "Ada's Diary (0 posts)") {
		t.Fatalf("missing header in %q", h.view())
	}

	h.typeText("walked")
	h.press(enterKey)

	got, err := h.journal.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Text != "walked" {
		t.Fatalf("expected one persisted entry, got %+v", got)
	}
	if h.m.input.Value() != "" {
		t.Errorf("input not cleared: %q", h.m.input.Value())
	}
	view := h.view()
	if !strings.Contains(view, "Ada's Diary (1 post)") {
		t.Errorf("header not updated: %q", view)
	}
	if !strings.Contains(view, "Thursday, January 15, 2026 · Evening") {
		t.Errorf("card date missing: %q", view)
	}

	h.pumpUntilSaid(t, "walked")
	h.pumpUntilSaid(t, "Written on the evening of Thursday, January 15th.")
}

func TestSpaceEchoesWord(t *testing.T) {
	h := newKVHarness(t)
	h.typeText("hi ")
	if got := h.nextSaid(t); got != "hi" {
		t.Errorf("echoed %q, want %q", got, "hi")
	}
	if h.m.input.Value() != "hi " {
		t.Errorf("space should still reach the input, got %q", h.m.input.Value())
	}
}

func TestEscTogglesBrowsing(t *testing.T) {
	h := newKVHarness(t, "older", "newer")

	h.press(escKey)
	if h.m.session.Mode() != session.Browsing {
		t.Fatalf("expected browsing, got %s", h.m.session.Mode())
	}
	if h.m.input.Focused() {
		t.Error("input should be blurred while browsing")
	}
	if !strings.Contains(h.view(), "space listen") {
		t.Errorf("browsing help missing: %q", h.view())
	}

	// Letters are commands while browsing and never reach the input.
	h.press(runeKey('j'))
	if h.m.session.Selected() != 1 || h.m.input.Value() != "" {
		t.Errorf("j should move the selection, got selected=%d input=%q", h.m.session.Selected(), h.m.input.Value())
	}

	h.press(escKey)
	if h.m.session.Mode() != session.Composing || !h.m.input.Focused() {
		t.Error("expected focused composing input after second esc")
	}
}

func TestBrowseNarrationAdvances(t *testing.T) {
	h := newKVHarness(t, "older", "newer")
	h.press(escKey, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	h.pumpUntilSaid(t, "newer")
	h.pumpUntilSaid(t, "Written on the evening of Thursday, January 15th.")

	deadline := time.After(2 * time.Second)
	for h.m.session.Selected() != 1 {
		select {
		case msg := <-h.posts:
			h.m.Update(msg)
		case <-deadline:
			t.Fatal("selection never advanced")
		}
	}
}

func TestEnterEditsSelected(t *testing.T) {
	h := newKVHarness(t, "older", "newer")
	h.press(escKey, enterKey)

	if h.m.session.Mode() != session.Editing {
		t.Fatalf("expected editing, got %s", h.m.session.Mode())
	}
	if h.m.input.Value() != "newer" {
		t.Fatalf("edit buffer = %q", h.m.input.Value())
	}
	h.typeText("!")
	h.press(enterKey)

	got, _ := h.journal.Entries()
	if got[1].Text != "newer!" {
		t.Errorf("edit not persisted: %+v", got)
	}
	if h.m.session.Mode() != session.Browsing {
		t.Errorf("expected browsing after edit, got %s", h.m.session.Mode())
	}
}

func TestQuitOnlyWhileBrowsing(t *testing.T) {
	h := newKVHarness(t)

	h.press(runeKey('q'))
	if h.m.input.Value() != "q" {
		t.Fatalf("q should type while composing, got %q", h.m.input.Value())
	}

	h.press(escKey)
	cmd := h.press(runeKey('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestCtrlCQuitsAnywhere(t *testing.T) {
	h := newKVHarness(t)
	cmd := h.press(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestStatsOverlay(t *testing.T) {
	h := newKVHarness(t, "walked the dog", "fed the dog")
	h.press(escKey, runeKey('s'))

	if !h.m.statsOpen {
		t.Fatal("expected stats overlay")
	}
	view := h.view()
	for _, want := range []string{"Ada's Stats", "Entries"} {
		if !strings.Contains(view, want) {
			t.Errorf("stats view missing %q", want)
		}
	}

	h.press(escKey)
	if h.m.statsOpen {
		t.Error("esc should close the overlay")
	}
	if h.m.session.Mode() != session.Browsing {
		t.Errorf("closing the overlay must not change mode, got %s", h.m.session.Mode())
	}
}

func TestStoreChangeMergesAnnotation(t *testing.T) {
	h := newKVHarness(t, "grateful for coffee")
	id := h.m.session.Entries()[0].ID

	if _, err := h.journal.Annotate(id, entry.Annotation{Category: "gratitude", Translation: "dankbar"}); err != nil {
		t.Fatal(err)
	}
	_, cmd := h.m.Update(storeChangedMsg{})
	if cmd != nil {
		t.Error("expected no follow-up watch without a watcher")
	}

	e, _ := h.m.session.Entries().AtDisplay(0)
	if a, ok := e.Annotated(); !ok || a.Category != "gratitude" {
		t.Fatalf("annotation not merged: %+v", e)
	}
	if !strings.Contains(h.view(), "[gratitude] dankbar") {
		t.Errorf("annotation not rendered: %q", h.view())
	}
}

func TestSaveFailureShownInFooter(t *testing.T) {
	h := newHarness(t, failingStore{})
	h.typeText("lost")
	h.press(enterKey)

	if !strings.Contains(h.view(), "not saved: read-only file system") {
		t.Errorf("save failure not shown: %q", h.view())
	}
	if !strings.Contains(h.view(), "(1 post)") {
		t.Error("entry should stay in memory after a failed save")
	}
}

func TestMutedFooter(t *testing.T) {
	store, err := kv.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m := newJournalModel(storage.NewJournal(store, "", nil), speech.NewPipeline(speech.Unavailable{}, 0, nil), JournalConfig{})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	view := stripANSI(m.View())
	if !strings.Contains(view, "muted") {
		t.Errorf("expected muted marker, got %q", view)
	}
	if !strings.Contains(view, "My diary (0 posts)") {
		t.Errorf("expected anonymous header, got %q", view)
	}
}

func TestWaitForChange(t *testing.T) {
	if waitForChange(nil) != nil {
		t.Error("nil channel should produce no command")
	}

	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	if _, ok := waitForChange(ch)().(storeChangedMsg); !ok {
		t.Error("expected storeChangedMsg")
	}
	close(ch)
	if msg := waitForChange(ch)(); msg != nil {
		t.Errorf("closed channel should yield nil, got %T", msg)
	}
}
