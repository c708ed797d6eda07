package entry

import (
	"fmt"
	"strings"
	"time"
)

// Period is a coarse time of day used for display and narration.
type Period int

const (
	Morning Period = iota
	Afternoon
	Evening
	Night
)

var periodNames = [...]string{"Morning", "Afternoon", "Evening", "Night"}

// Start hours used when an entry is shifted into a period.
var periodStart = [...]int{8, 13, 18, 22}

func (p Period) String() string {
	if p < Morning || p > Night {
		return "Unknown"
	}
	return periodNames[p]
}

// PeriodOf classifies the local hour of t.
func PeriodOf(t time.Time) Period {
	h := t.Hour()
	switch {
	case h >= 5 && h < 12:
		return Morning
	case h >= 12 && h < 17:
		return Afternoon
	case h >= 17 && h < 21:
		return Evening
	default:
		return Night
	}
}

// Ordinal renders n with its English suffix (1st, 2nd, 11th, 23rd).
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// SpeechDate is the sentence narrated after an entry's text.
func SpeechDate(t time.Time) string {
	return fmt.Sprintf("Written on the %s of %s, %s %s.",
		strings.ToLower(PeriodOf(t).String()),
		t.Weekday(),
		t.Month(),
		Ordinal(t.Day()))
}

// CardDate is the long date shown on an entry card.
func CardDate(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// ShiftPeriod moves t to the start hour of the next local period on the
// same local calendar day, wrapping from Night back to Morning.
func ShiftPeriod(t time.Time) time.Time {
	t = t.Local()
	next := (PeriodOf(t) + 1) % (Night + 1)
	y, m, d := t.Date()
	return time.Date(y, m, d, periodStart[next], 0, 0, 0, t.Location())
}
