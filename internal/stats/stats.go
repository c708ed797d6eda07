// Package stats summarizes a journal: counts per day, cumulative growth,
// streaks and the most used words.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/chris-regnier/murmur/internal/entry"
)

const dayLayout = "2006-01-02"

// TopWordsLimit bounds Summary.TopWords.
const TopWordsLimit = 10

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "was": true, "were": true, "with": true,
	"that": true, "this": true, "but": true, "not": true, "are": true, "had": true,
	"have": true, "has": true, "you": true, "our": true, "out": true, "its": true,
	"from": true, "then": true, "than": true, "they": true, "them": true, "there": true,
	"what": true, "when": true, "into": true, "just": true, "all": true, "about": true,
}

// Day is one point of the per-day series.
type Day struct {
	Date       string `json:"date"`
	Count      int    `json:"count"`
	Cumulative int    `json:"cumulative"`
}

// WordCount is a word and how often it occurs.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Summary is the computed report.
type Summary struct {
	Total        int            `json:"total"`
	DaysActive   int            `json:"days_active"`
	Average      float64        `json:"average_per_active_day"`
	FirstDay     string         `json:"first_day,omitempty"`
	Streak       int            `json:"streak"`
	WrittenToday bool           `json:"written_today"`
	Periods      map[string]int `json:"periods"`
	Series       []Day          `json:"series"`
	TopWords     []WordCount    `json:"top_words"`
}

// Compute builds a Summary of entries as of now. Days are local calendar
// days in now's location.
func Compute(entries entry.Collection, now time.Time) Summary {
	s := Summary{
		Periods:  map[string]int{},
		Series:   []Day{},
		TopWords: []WordCount{},
	}
	for p := entry.Morning; p <= entry.Night; p++ {
		s.Periods[p.String()] = 0
	}
	if len(entries) == 0 {
		return s
	}

	loc := now.Location()
	counts := make(map[string]int)
	words := make(map[string]int)
	var first time.Time
	for _, e := range entries {
		t := e.Timestamp.In(loc)
		d := startOfDay(t)
		if first.IsZero() || d.Before(first) {
			first = d
		}
		counts[d.Format(dayLayout)]++
		s.Periods[entry.PeriodOf(t).String()]++
		for _, w := range tokenize(e.Text) {
			words[w]++
		}
	}

	s.Total = len(entries)
	s.DaysActive = len(counts)
	s.Average = math.Round(float64(s.Total)/float64(s.DaysActive)*10) / 10
	s.FirstDay = first.Format(dayLayout)

	today := startOfDay(now)
	cumulative := 0
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		cumulative += counts[key]
		s.Series = append(s.Series, Day{Date: key, Count: counts[key], Cumulative: cumulative})
	}

	s.WrittenToday = counts[today.Format(dayLayout)] > 0
	// Count consecutive days backwards from today
	for d := today; counts[d.Format(dayLayout)] > 0; d = d.AddDate(0, 0, -1) {
		s.Streak++
	}

	s.TopWords = topWords(words, TopWordsLimit)
	return s
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// tokenize lower-cases text and returns its words of three letters or more,
// skipping stop words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	var out []string
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if len([]rune(f)) < 3 || stopWords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func topWords(words map[string]int, limit int) []WordCount {
	out := make([]WordCount, 0, len(words))
	for w, c := range words {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Title is the report heading for an identity; blank means anonymous.
func Title(identity string) string {
	if strings.TrimSpace(identity) == "" {
		return "My Stats"
	}
	return fmt.Sprintf("%s's Stats", strings.TrimSpace(identity))
}
