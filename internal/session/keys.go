package session

import (
	"strings"

	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/speech"
)

// Key is one logical key press. Name is "esc", "enter", "space", "up",
// "down", "backspace" and so on, or the typed character for printable keys.
// Mod is set when the key was combined with a modifier.
type Key struct {
	Name string
	Rune rune
	Mod  bool
}

// Printable returns the Key for a typed character.
func Printable(r rune) Key {
	return Key{Name: string(r), Rune: r}
}

const punctuation = ".,!?;:"

// Bare modifier presses never reset the echo memory.
var modifierKeys = map[string]bool{
	"shift": true, "ctrl": true, "alt": true, "meta": true, "capslock": true,
}

// Key applies a key press. Window-level handling runs first, then
// input-level handling. It reports whether the key should still reach the
// text input.
func (s *Session) Key(k Key) bool {
	if k.Name == "esc" {
		s.narrator.Cancel()
		if s.state.Mode == Browsing {
			s.setMode(Composing)
		} else {
			if s.state.Mode == Editing {
				s.buffer.SetValue("")
			}
			s.setMode(Browsing)
		}
		return false
	}
	if s.state.Mode == Browsing {
		s.browseKey(k)
		return false
	}
	return s.inputKey(k)
}

func (s *Session) browseKey(k Key) {
	switch k.Name {
	case "down", "j":
		s.narrator.Cancel()
		if s.state.Selected < len(s.entries)-1 {
			s.state.Selected++
			s.render()
		}
	case "up", "k":
		s.narrator.Cancel()
		if s.state.Selected > 0 {
			s.state.Selected--
			s.render()
		}
	case "enter":
		if len(s.entries) == 0 {
			return
		}
		s.narrator.Cancel()
		s.beginEdit()
	case "space":
		e, ok := s.entries.AtDisplay(s.state.Selected)
		if !ok {
			return
		}
		s.speakEntry(e, s.advance)
	case "t":
		i := entry.StorageIndex(len(s.entries), s.state.Selected)
		if i < 0 || i >= len(s.entries) {
			return
		}
		s.narrator.Cancel()
		s.entries[i].Timestamp = entry.ShiftPeriod(s.entries[i].Timestamp)
		s.save()
		s.render()
	}
}

func (s *Session) beginEdit() {
	i := entry.StorageIndex(len(s.entries), s.state.Selected)
	s.state.Editing = i
	s.buffer.SetValue(s.entries[i].Text)
	s.state.Mode = Editing
	s.state.LastSpoken = ""
	s.render()
}

func (s *Session) inputKey(k Key) bool {
	switch {
	case k.Name == "enter":
		if !k.Mod {
			s.commit()
		}
		return false
	case k.Name == "space":
		if token := currentToken(s.buffer.BeforeCursor()); token != "" && token != s.state.LastSpoken {
			s.echoToken(token)
		}
		return true
	case k.Rune != 0 && strings.ContainsRune(punctuation, k.Rune):
		s.echoToken(currentToken(s.buffer.BeforeCursor()) + string(k.Rune))
		return true
	case modifierKeys[k.Name]:
		return true
	}
	s.state.LastSpoken = ""
	return true
}

func (s *Session) echoToken(token string) {
	s.state.LastSpoken = token
	s.narrator.Start(speech.Chain{Parts: []string{token}, Profile: s.echo})
}

// currentToken is the last whitespace-separated word before the cursor.
func currentToken(before string) string {
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func (s *Session) commit() {
	text := strings.TrimSpace(s.buffer.Value())
	if text == "" {
		return
	}
	s.narrator.Cancel()

	if s.state.Mode == Editing {
		s.commitEdit(text)
		return
	}

	e, err := entry.New(text, s.now())
	if err != nil {
		s.log.Error("creating entry", "err", err)
		return
	}
	s.entries = append(s.entries, e)
	s.save()
	s.buffer.SetValue("")
	s.state.LastSpoken = ""
	s.render()
	s.speakEntry(e, nil)
}

func (s *Session) commitEdit(text string) {
	i := s.state.Editing
	if i < 0 || i >= len(s.entries) {
		s.log.Warn("edited entry no longer exists", "index", i)
		s.buffer.SetValue("")
		s.setMode(Browsing)
		return
	}
	s.entries[i].Text = text
	s.entries[i].Annotation = nil
	s.save()
	s.buffer.SetValue("")
	s.setMode(Browsing)
	s.speakEntry(s.entries[i], s.advance)
}
