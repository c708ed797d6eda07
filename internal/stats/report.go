package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/chris-regnier/murmur/internal/entry"
)

// chartDays is how many trailing days the cumulative chart shows.
const chartDays = 14

const chartWidth = 30

// Markdown renders s as a Markdown report under the given title.
func Markdown(s Summary, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	if s.Total == 0 {
		b.WriteString("No entries yet. Start typing and press enter to write your first one.\n")
		return b.String()
	}

	b.WriteString("| Entries | Days active | Per active day | Streak |\n")
	b.WriteString("|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %.1f | %s |\n\n", s.Total, s.DaysActive, s.Average, plural(s.Streak, "day"))

	if first, err := time.Parse(dayLayout, s.FirstDay); err == nil {
		fmt.Fprintf(&b, "Writing since %s.\n\n", first.Format("Monday, January 2, 2006"))
	}

	b.WriteString("## Cumulative entries\n\n")
	b.WriteString("```\n")
	series := s.Series
	if len(series) > chartDays {
		series = series[len(series)-chartDays:]
	}
	peak := 0
	for _, d := range series {
		peak = max(peak, d.Cumulative)
	}
	for _, d := range series {
		label := d.Date
		if t, err := time.Parse(dayLayout, d.Date); err == nil {
			label = t.Format("Jan _2")
		}
		bar := 0
		if peak > 0 {
			bar = d.Cumulative * chartWidth / peak
		}
		fmt.Fprintf(&b, "%s %-*s %d\n", label, chartWidth, strings.Repeat("█", bar), d.Cumulative)
	}
	b.WriteString("```\n\n")

	b.WriteString("## Time of day\n\n")
	for p := entry.Morning; p <= entry.Night; p++ {
		fmt.Fprintf(&b, "- **%s**: %d\n", p, s.Periods[p.String()])
	}
	b.WriteString("\n")

	if len(s.TopWords) > 0 {
		b.WriteString("## Top words\n\n")
		for i, w := range s.TopWords {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, w.Word, w.Count)
		}
	}
	return b.String()
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
