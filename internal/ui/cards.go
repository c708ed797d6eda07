package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/session"
)

// cardItem implements list.Item for one entry card.
type cardItem struct {
	entry entry.Entry
}

func (c cardItem) Title() string {
	at := c.entry.Timestamp.Local()
	return fmt.Sprintf("%s · %s", entry.CardDate(at), entry.PeriodOf(at))
}

func (c cardItem) Description() string {
	text := strings.Join(strings.Fields(c.entry.Text), " ")
	a, ok := c.entry.Annotated()
	if !ok {
		return text
	}
	tag := "[" + a.Category + "]"
	if a.Translation != "" {
		tag += " " + a.Translation
	}
	return tag + " " + text
}

func (c cardItem) FilterValue() string { return c.entry.Text }

// cardList projects the session's collection onto a themed list.Model,
// newest entry first.
type cardList struct {
	theme   Theme
	list    list.Model
	mode    session.Mode
	entries entry.Collection
	// selected is the session's display index, -1 while composing.
	selected int
}

var _ session.Projector = (*cardList)(nil)

func newCardList(theme Theme) *cardList {
	l := theme.NewList(nil, 0, 0)
	l.SetStatusBarItemName("entry", "entries")
	return &cardList{theme: theme, list: l, selected: -1}
}

// Render rebuilds the cards. The selection is highlighted only while
// browsing or editing.
func (c *cardList) Render(mode session.Mode, entries entry.Collection, selected int) {
	c.mode, c.entries, c.selected = mode, entries, selected

	display := entries.Display()
	items := make([]list.Item, len(display))
	for i, e := range display {
		items[i] = cardItem{entry: e}
	}
	c.list.SetItems(items)
	c.list.SetDelegate(c.theme.CardDelegate(mode != session.Composing))
	if selected >= 0 && selected < len(items) {
		c.list.Select(selected)
	} else {
		c.list.Select(0)
	}
}

// Count is the number of entries last rendered.
func (c *cardList) Count() int { return len(c.entries) }

func (c *cardList) SetSize(width, height int) {
	c.list.SetSize(width, max(height, 0))
}

func (c *cardList) View() string { return c.list.View() }
