package kv

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/storage"
)

func TestLoadCorruptDocument(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := os.WriteFile(s.Path("ada"), []byte(`{"entries": [ {`), 0o644); err != nil {
		t.Fatalf("writing corrupt doc: %v", err)
	}
	c, err := s.Load("ada")
	if !errors.Is(err, storage.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if len(c) != 0 {
		t.Errorf("expected empty collection, got %d", len(c))
	}
}

func TestAnnotateLegacyDocument(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	legacy := `{"entries":[{"timestamp":"2024-03-01T08:00:00.000Z","text":"old note"}]}`
	if err := os.WriteFile(s.Path("ada"), []byte(legacy), 0o644); err != nil {
		t.Fatalf("writing legacy doc: %v", err)
	}
	j := storage.NewJournal(s, "ada", nil)

	listed, err := j.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	again, err := j.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if listed[0].ID != again[0].ID {
		t.Fatalf("ID changed between loads: %s then %s", listed[0].ID, again[0].ID)
	}

	if _, err := j.Annotate(listed[0].ID, entry.Annotation{Category: "memo"}); err != nil {
		t.Fatalf("Annotate(%s): %v", listed[0].ID, err)
	}
	c, err := s.Load("ada")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a, ok := c[0].Annotated()
	if !ok || a.Category != "memo" {
		t.Errorf("annotation not stored: %+v", c[0])
	}
	if c[0].ID != listed[0].ID {
		t.Errorf("saved ID %s, want %s", c[0].ID, listed[0].ID)
	}
}

func TestKeyTransformRoundTrip(t *testing.T) {
	for _, key := range []string{"diary_Nameless", "diary_Jo Doe", "diary_../x/y", "diary_ünï"} {
		if got := pathToKeyTransform(keyToPathTransform(key)); got != key {
			t.Errorf("round trip %q = %q", key, got)
		}
	}
}

func TestLoadSeesExternalWrite(t *testing.T) {
	dir := t.TempDir()
	a, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e, _ := entry.New("first", time.Now())
	if err := a.Save("ada", entry.Collection{e}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := a.Load("ada"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	e2, _ := entry.New("second", time.Now())
	if err := b.Save("ada", entry.Collection{e, e2}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c, err := a.Load("ada")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c) != 2 {
		t.Errorf("stale read: %d entries", len(c))
	}
}

func TestWatchSignalsOnSave(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx, "ada")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	e, _ := entry.New("hello", time.Now())
	if err := s.Save("ada", entry.Collection{e}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
