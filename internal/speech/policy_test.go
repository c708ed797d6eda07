package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferredChoose(t *testing.T) {
	tests := []struct {
		name   string
		voices []Voice
		want   Voice
	}{
		{
			name:   "first preference wins over later ones",
			voices: []Voice{{Name: "Daniel", Lang: "en-GB"}, {Name: "Google UK English Male", Lang: "en-GB"}},
			want:   Voice{Name: "Google UK English Male", Lang: "en-GB"},
		},
		{
			name:   "substring match ignoring case",
			voices: []Voice{{Name: "Samantha", Lang: "en-US"}, {Name: "daniel (enhanced)", Lang: "en-GB"}},
			want:   Voice{Name: "daniel (enhanced)", Lang: "en-GB"},
		},
		{
			name:   "espeak style name",
			voices: []Voice{{Name: "English (United Kingdom)", Lang: "en-gb"}},
			want:   Voice{Name: "English (United Kingdom)", Lang: "en-gb"},
		},
		{
			name:   "fallback language",
			voices: []Voice{{Name: "Samantha", Lang: "en-US"}},
			want:   Voice{Lang: "en-GB"},
		},
		{
			name: "no voices",
			want: Voice{Lang: "en-GB"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultPolicy().Choose(tt.voices))
		})
	}
}

func TestVoiceString(t *testing.T) {
	assert.Equal(t, "Daniel (en-GB)", Voice{Name: "Daniel", Lang: "en-GB"}.String())
	assert.Equal(t, "en-GB", Voice{Lang: "en-GB"}.String())
}
