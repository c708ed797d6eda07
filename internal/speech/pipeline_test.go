package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sayCall struct {
	u    Utterance
	ctx  context.Context
	done chan error
}

// blockingSynth hands every Say call to the test, which decides when and
// how it finishes.
type blockingSynth struct {
	calls chan sayCall
}

func newBlockingSynth() *blockingSynth {
	return &blockingSynth{calls: make(chan sayCall, 16)}
}

func (s *blockingSynth) Voices(context.Context) ([]Voice, error) {
	return []Voice{{Name: "Alex", Lang: "en-US"}, {Name: "Daniel", Lang: "en-GB"}}, nil
}

func (s *blockingSynth) Say(ctx context.Context, u Utterance) error {
	c := sayCall{u: u, ctx: ctx, done: make(chan error, 1)}
	s.calls <- c
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type harness struct {
	t     *testing.T
	synth *blockingSynth
	p     *Pipeline
	msgs  chan any
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, synth: newBlockingSynth(), msgs: make(chan any, 16)}
	h.p = NewPipeline(h.synth, 0, nil)
	h.p.Attach(func(m any) { h.msgs <- m })
	return h
}

func (h *harness) nextCall() sayCall {
	h.t.Helper()
	select {
	case c := <-h.synth.calls:
		return c
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for Say")
	}
	return sayCall{}
}

func (h *harness) deliver() any {
	h.t.Helper()
	select {
	case m := <-h.msgs:
		require.True(h.t, h.p.Handle(m), "pipeline should consume %T", m)
		return m
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for message")
	}
	return nil
}

func (h *harness) noCall() {
	h.t.Helper()
	select {
	case c := <-h.synth.calls:
		h.t.Fatalf("unexpected Say(%q)", c.u.Text)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChainSpeaksPartsInOrder(t *testing.T) {
	h := newHarness(t)
	var doneCount int
	h.p.Start(Chain{Parts: []string{"A", "B"}, Profile: Solemn, OnDone: func() { doneCount++ }})
	assert.Equal(t, Speaking, h.p.Stage())

	a := h.nextCall()
	assert.Equal(t, "A", a.u.Text)
	assert.Equal(t, Solemn, a.u.Profile)
	a.done <- nil
	assert.IsType(t, Spoken{}, h.deliver())
	assert.Equal(t, Settling, h.p.Stage())

	assert.IsType(t, Settled{}, h.deliver())
	b := h.nextCall()
	assert.Equal(t, "B", b.u.Text)
	assert.Zero(t, doneCount)

	b.done <- nil
	h.deliver()
	assert.Equal(t, Done, h.p.Stage())
	assert.Equal(t, 1, doneCount)
}

func TestNewSpeakCancelsPendingContinuation(t *testing.T) {
	h := newHarness(t)
	var aDone, cDone bool
	h.p.Start(Chain{Parts: []string{"A", "B"}, Profile: Solemn, OnDone: func() { aDone = true }})

	h.nextCall().done <- nil
	h.deliver() // A finished, B is now scheduled

	h.p.Speak("C", Echo, func() { cDone = true })
	c := h.nextCall()
	assert.Equal(t, "C", c.u.Text)

	// The settle timer for B may already have posted; it must be ignored.
	select {
	case m := <-h.msgs:
		assert.True(t, h.p.Handle(m))
	case <-time.After(50 * time.Millisecond):
	}
	h.noCall()

	c.done <- nil
	h.deliver()
	assert.True(t, cDone)
	assert.False(t, aDone, "cancelled chain must not complete")
}

func TestSpeakPreemptsActiveUtterance(t *testing.T) {
	h := newHarness(t)
	var aDone bool
	h.p.Speak("A", Solemn, func() { aDone = true })
	a := h.nextCall()

	h.p.Speak("C", Echo, nil)
	select {
	case <-a.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("active utterance was not cancelled")
	}
	c := h.nextCall()
	assert.Equal(t, "C", c.u.Text)

	// A stale completion for A, had it been posted, is dropped.
	assert.True(t, h.p.Handle(Spoken{token: 1}))
	assert.False(t, aDone)
	assert.Equal(t, Speaking, h.p.Stage())
}

func TestCancelIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.p.Speak("A", Solemn, func() { t.Error("onDone after cancel") })
	a := h.nextCall()
	h.p.Cancel()
	h.p.Cancel()
	assert.Equal(t, Idle, h.p.Stage())
	<-a.ctx.Done()
	h.noCall()
}

func TestFailedUtteranceAbortsChain(t *testing.T) {
	h := newHarness(t)
	h.p.Start(Chain{Parts: []string{"A", "B"}, OnDone: func() { t.Error("onDone after failure") }})
	h.nextCall().done <- errors.New("device busy")
	h.deliver()
	assert.Equal(t, Idle, h.p.Stage())
	h.noCall()
}

func TestBlankPartsAreSkipped(t *testing.T) {
	h := newHarness(t)
	h.p.Start(Chain{Parts: []string{"  ", "only"}})
	assert.Equal(t, "only", h.nextCall().u.Text)

	h.p.Speak("   ", Echo, func() { t.Error("onDone for blank text") })
	assert.Equal(t, Idle, h.p.Stage())
	h.noCall()
}

func TestUnavailableSynthIsNoop(t *testing.T) {
	p := NewPipeline(Unavailable{}, DefaultSettle, nil)
	var posted []any
	var mu sync.Mutex
	p.Attach(func(m any) { mu.Lock(); posted = append(posted, m); mu.Unlock() })
	p.Speak("hello", Echo, func() { t.Error("onDone without engine") })
	assert.Equal(t, Idle, p.Stage())
	assert.False(t, p.Available())
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Empty(t, posted)
	mu.Unlock()
}

func TestHandleIgnoresForeignMessages(t *testing.T) {
	p := NewPipeline(nil, 0, nil)
	assert.False(t, p.Handle("tick"))
	assert.False(t, p.Handle(nil))
}

func TestResolveUsesPolicy(t *testing.T) {
	h := newHarness(t)
	v := h.p.Resolve(t.Context(), DefaultPolicy())
	assert.Equal(t, "Daniel", v.Name)
	assert.Equal(t, v, h.p.Voice())

	h.p.Speak("hi", Echo, nil)
	assert.Equal(t, "Daniel", h.nextCall().u.Voice.Name)
}
