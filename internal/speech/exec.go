package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Engine names accepted by Resolve.
const (
	EngineAuto     = "auto"
	EngineNone     = "none"
	EngineSay      = "say"
	EngineEspeakNG = "espeak-ng"
	EngineEspeak   = "espeak"
	EngineSpdSay   = "spd-say"
)

// baseWPM is the words-per-minute rate that Profile.Rate 1.0 maps to.
const baseWPM = 175

var autoOrder = []string{EngineSay, EngineEspeakNG, EngineEspeak, EngineSpdSay}

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// ExecSynthesizer speaks by running an installed TTS command.
type ExecSynthesizer struct {
	engine string
	path   string
}

// NewExec returns a synthesizer that runs the given engine's binary at path.
func NewExec(engine, path string) (*ExecSynthesizer, error) {
	switch engine {
	case EngineSay, EngineEspeakNG, EngineEspeak, EngineSpdSay:
	default:
		return nil, fmt.Errorf("unknown speech engine %q", engine)
	}
	return &ExecSynthesizer{engine: engine, path: path}, nil
}

// Resolve picks a Synthesizer for the configured engine name. "none" and
// missing binaries yield Unavailable; the latter also returns an error
// wrapping ErrUnavailable so callers can log it.
func Resolve(name string) (Synthesizer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case EngineNone:
		return Unavailable{}, nil
	case "", EngineAuto:
		for _, engine := range autoOrder {
			if path, err := lookPath(engine); err == nil {
				return &ExecSynthesizer{engine: engine, path: path}, nil
			}
		}
		return Unavailable{}, fmt.Errorf("%w: none of %s installed", ErrUnavailable, strings.Join(autoOrder, ", "))
	}
	if _, err := NewExec(name, ""); err != nil {
		return Unavailable{}, err
	}
	path, err := lookPath(name)
	if err != nil {
		return Unavailable{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &ExecSynthesizer{engine: name, path: path}, nil
}

// Engine returns the engine name.
func (s *ExecSynthesizer) Engine() string { return s.engine }

// Say runs the engine and waits for it to finish speaking.
func (s *ExecSynthesizer) Say(ctx context.Context, u Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, s.path, s.Args(u)...)
	if s.engine == EngineSpdSay {
		// Killing the client leaves speech-dispatcher talking.
		cmd.Cancel = func() error {
			_ = exec.Command(s.path, "-C").Run()
			return cmd.Process.Kill()
		}
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", s.engine, err, msg)
		}
		return fmt.Errorf("%s: %w", s.engine, err)
	}
	return nil
}

// Args builds the command line for u.
func (s *ExecSynthesizer) Args(u Utterance) []string {
	rate, pitch := u.Profile.Rate, u.Profile.Pitch
	if rate <= 0 {
		rate = 1
	}
	if pitch <= 0 {
		pitch = 1
	}
	wpm := strconv.Itoa(int(math.Round(baseWPM * rate)))
	text := u.Text
	if strings.HasPrefix(text, "-") {
		text = " " + text
	}

	var args []string
	switch s.engine {
	case EngineSay:
		args = []string{"-r", wpm}
		if u.Voice.Name != "" {
			args = append(args, "-v", u.Voice.Name)
		}
	case EngineEspeakNG, EngineEspeak:
		args = []string{"-s", wpm, "-p", strconv.Itoa(clamp(int(math.Round(50*pitch)), 0, 99))}
		// espeak selects voices by language identifier.
		switch {
		case u.Voice.Lang != "":
			args = append(args, "-v", strings.ToLower(u.Voice.Lang))
		case u.Voice.Name != "":
			args = append(args, "-v", u.Voice.Name)
		}
	case EngineSpdSay:
		args = []string{
			"-w",
			"-r", strconv.Itoa(clamp(int(math.Round((rate-1)*100)), -100, 100)),
			"-p", strconv.Itoa(clamp(int(math.Round((pitch-1)*100)), -100, 100)),
		}
		switch {
		case u.Voice.Name != "":
			args = append(args, "-y", u.Voice.Name)
		case u.Voice.Lang != "":
			args = append(args, "-l", u.Voice.Lang)
		}
	}
	return append(args, text)
}

// Voices lists the engine's voices.
func (s *ExecSynthesizer) Voices(ctx context.Context) ([]Voice, error) {
	var args []string
	switch s.engine {
	case EngineSay:
		args = []string{"-v", "?"}
	case EngineEspeakNG, EngineEspeak:
		args = []string{"--voices"}
	case EngineSpdSay:
		args = []string{"-L"}
	}
	out, err := exec.CommandContext(ctx, s.path, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("%s: listing voices: %w", s.engine, err)
	}
	switch s.engine {
	case EngineSay:
		return parseSayVoices(out), nil
	case EngineSpdSay:
		return parseSpdVoices(out), nil
	default:
		return parseEspeakVoices(out), nil
	}
}

// parseEspeakVoices reads `espeak --voices` output:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  en-gb           --/M      English_(Great_Britain) gmw/en
func parseEspeakVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 4 || f[0] == "Pty" {
			continue
		}
		voices = append(voices, Voice{
			Name: strings.ReplaceAll(f[3], "_", " "),
			Lang: normalizeLang(f[1]),
		})
	}
	return voices
}

// parseSayVoices reads `say -v ?` output:
//
//	Daniel              en_GB    # Hello! My name is Daniel.
//	Bad News            en_US    # The light you see at the end of the tunnel...
func parseSayVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "#")
		f := strings.Fields(line)
		if len(f) < 2 {
			continue
		}
		voices = append(voices, Voice{
			Name: strings.Join(f[:len(f)-1], " "),
			Lang: normalizeLang(f[len(f)-1]),
		})
	}
	return voices
}

// parseSpdVoices reads `spd-say -L` output:
//
//	NAME                 LANGUAGE             VARIANT
//	Afrikaans            af                   none
func parseSpdVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 2 || f[0] == "NAME" {
			continue
		}
		if len(f) == 2 {
			voices = append(voices, Voice{Name: f[0], Lang: normalizeLang(f[1])})
			continue
		}
		voices = append(voices, Voice{
			Name: strings.Join(f[:len(f)-2], " "),
			Lang: normalizeLang(f[len(f)-2]),
		})
	}
	return voices
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
