// Package speech narrates text through an installed text-to-speech engine.
// Synthesizers only know how to say one utterance; the Pipeline sequences
// utterances into cancelable chains.
package speech

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no speech engine can be used.
var ErrUnavailable = errors.New("speech unavailable")

// Voice describes one voice offered by an engine.
type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

func (v Voice) String() string {
	switch {
	case v.Name != "" && v.Lang != "":
		return v.Name + " (" + v.Lang + ")"
	case v.Name != "":
		return v.Name
	default:
		return v.Lang
	}
}

// Profile scales the engine's default rate and pitch. 1.0 is the engine
// default for both.
type Profile struct {
	Rate  float64
	Pitch float64
}

var (
	// Solemn is used when reading entries back.
	Solemn = Profile{Rate: 0.9, Pitch: 0.8}
	// Echo is used for live typing feedback.
	Echo = Profile{Rate: 1.0, Pitch: 1.0}
)

// Utterance is a single piece of text to speak.
type Utterance struct {
	Text    string
	Voice   Voice
	Profile Profile
}

// Synthesizer is the speech capability of the environment.
type Synthesizer interface {
	// Voices lists the voices the engine offers.
	Voices(ctx context.Context) ([]Voice, error)
	// Say speaks u and returns once speech has finished. Cancelling ctx
	// stops speech and makes Say return promptly.
	Say(ctx context.Context, u Utterance) error
}

// Unavailable is the Synthesizer used when speech is muted or no engine is
// installed.
type Unavailable struct{}

func (Unavailable) Voices(context.Context) ([]Voice, error) { return nil, ErrUnavailable }

func (Unavailable) Say(context.Context, Utterance) error { return ErrUnavailable }

// IsAvailable reports whether s can produce speech at all.
func IsAvailable(s Synthesizer) bool {
	if s == nil {
		return false
	}
	_, muted := s.(Unavailable)
	return !muted
}
