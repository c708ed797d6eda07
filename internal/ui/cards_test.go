package ui

import (
	"strings"
	"testing"

	"github.com/chris-regnier/murmur/internal/config"
	"github.com/chris-regnier/murmur/internal/session"
)

func TestCardItem(t *testing.T) {
	c := sampleCollection()

	plain := cardItem{entry: c[0]}
	if plain.Title() != "Wednesday, January 14, 2026 · Morning" {
		t.Errorf("unexpected title %q", plain.Title())
	}
	if plain.Description() != "coffee on the balcony" {
		t.Errorf("unexpected description %q", plain.Description())
	}

	tagged := cardItem{entry: c[1]}
	if tagged.Description() != "[rest] insomnie could not sleep" {
		t.Errorf("unexpected description %q", tagged.Description())
	}
}

func TestCardListFollowsSession(t *testing.T) {
	cards := newCardList(ResolveTheme(config.ThemeConfig{}))
	cards.SetSize(80, 20)

	cards.Render(session.Browsing, sampleCollection(), 1)
	if cards.Count() != 2 {
		t.Errorf("expected 2 cards, got %d", cards.Count())
	}
	if cards.list.Index() != 1 {
		t.Errorf("expected list index 1, got %d", cards.list.Index())
	}
	item := cards.list.SelectedItem().(cardItem)
	if item.entry.ID != "aaaaaaaa" {
		t.Errorf("display index 1 should be the oldest entry, got %s", item.entry.ID)
	}

	cards.Render(session.Composing, sampleCollection(), -1)
	if cards.list.Index() != 0 {
		t.Errorf("composing should park the list at the top, got %d", cards.list.Index())
	}
	view := stripANSI(cards.View())
	if strings.Index(view, "could not sleep") > strings.Index(view, "coffee on the balcony") {
		t.Error("newest card should be drawn first")
	}
}

func TestCardListEmpty(t *testing.T) {
	cards := newCardList(ResolveTheme(config.ThemeConfig{}))
	cards.SetSize(80, 10)
	cards.Render(session.Browsing, nil, 0)
	if !strings.Contains(stripANSI(cards.View()), "No entries") {
		t.Errorf("expected empty message, got %q", cards.View())
	}
}
