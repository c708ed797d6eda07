package speech

import "strings"

// DefaultFallbackLang is used when none of the preferred voices exist.
const DefaultFallbackLang = "en-GB"

// DefaultPreferredVoices are tried in order.
var DefaultPreferredVoices = []string{"Google UK English Male", "Daniel", "English (United Kingdom)"}

// VoicePolicy picks the voice to narrate with from the engine's voices.
type VoicePolicy interface {
	Choose(voices []Voice) Voice
}

// Preferred walks Names in order and picks the first voice whose name
// contains it, ignoring case. Without a match it asks for FallbackLang and
// leaves the voice choice to the engine.
type Preferred struct {
	Names        []string
	FallbackLang string
}

// DefaultPolicy returns the stock voice preferences.
func DefaultPolicy() Preferred {
	return Preferred{Names: DefaultPreferredVoices, FallbackLang: DefaultFallbackLang}
}

func (p Preferred) Choose(voices []Voice) Voice {
	for _, want := range p.Names {
		want = strings.ToLower(strings.TrimSpace(want))
		if want == "" {
			continue
		}
		for _, v := range voices {
			if strings.Contains(strings.ToLower(v.Name), want) {
				return v
			}
		}
	}
	return Voice{Lang: p.FallbackLang}
}

// normalizeLang turns en_GB into en-GB.
func normalizeLang(lang string) string {
	return strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
}
