package speech

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

// DefaultSettle is the pause between chained utterances.
const DefaultSettle = 230 * time.Millisecond

// Stage is the position of the current chain.
type Stage int

const (
	Idle Stage = iota
	Speaking
	Settling
	Done
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Speaking:
		return "speaking"
	case Settling:
		return "settling"
	case Done:
		return "done"
	}
	return "unknown"
}

// Chain is a sequence of utterances spoken one after another with the
// settle delay in between. OnDone runs once after the last part finishes
// naturally and never when the chain is cancelled or fails.
type Chain struct {
	Parts   []string
	Profile Profile
	OnDone  func()
}

// Spoken is posted when an utterance finishes.
type Spoken struct {
	token uint64
	err   error
}

// Settled is posted when the settle delay after an utterance has elapsed.
type Settled struct {
	token uint64
}

// Pipeline runs at most one Chain at a time. Speech runs in a goroutine and
// timers fire on their own, but both only report back by posting a message;
// all state changes happen in Start, Cancel and Handle, which must be called
// from a single event loop.
type Pipeline struct {
	synth  Synthesizer
	voice  Voice
	settle time.Duration
	post   func(any)
	log    *slog.Logger

	token uint64
	stage Stage
	chain Chain
	next  int
	stop  context.CancelFunc
	timer *time.Timer
}

// NewPipeline creates a pipeline. Messages are dropped until Attach is
// called.
func NewPipeline(synth Synthesizer, settle time.Duration, log *slog.Logger) *Pipeline {
	if synth == nil {
		synth = Unavailable{}
	}
	if settle < 0 {
		settle = 0
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{synth: synth, settle: settle, log: log, post: func(any) {}}
}

// Attach sets the function used to deliver Spoken and Settled messages to
// the event loop, typically tea.Program.Send.
func (p *Pipeline) Attach(post func(any)) {
	if post == nil {
		post = func(any) {}
	}
	p.post = post
}

// Resolve asks the engine for its voices and lets policy choose one.
func (p *Pipeline) Resolve(ctx context.Context, policy VoicePolicy) Voice {
	if !IsAvailable(p.synth) {
		return p.voice
	}
	voices, err := p.synth.Voices(ctx)
	if err != nil {
		p.log.Warn("listing voices", "err", err)
	}
	p.voice = policy.Choose(voices)
	p.log.Info("voice selected", "voice", p.voice.String())
	return p.voice
}

// Voice returns the voice in use.
func (p *Pipeline) Voice() Voice { return p.voice }

// Available reports whether the pipeline can speak at all.
func (p *Pipeline) Available() bool { return IsAvailable(p.synth) }

// Stage returns the stage of the current chain.
func (p *Pipeline) Stage() Stage { return p.stage }

// Speak cancels whatever is in flight and speaks text.
func (p *Pipeline) Speak(text string, prof Profile, onDone func()) {
	p.Start(Chain{Parts: []string{text}, Profile: prof, OnDone: onDone})
}

// Start cancels whatever is in flight and begins c. Blank parts are
// skipped. Without an engine or without any text Start only cancels.
func (p *Pipeline) Start(c Chain) {
	p.Cancel()
	var parts []string
	for _, part := range c.Parts {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 || !p.Available() {
		return
	}
	c.Parts = parts
	p.chain = c
	p.next = 0
	p.sayNext()
}

// Cancel stops the current utterance and any pending continuation. Stale
// messages from the cancelled chain are ignored by Handle.
func (p *Pipeline) Cancel() {
	p.token++
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.stage = Idle
	p.chain = Chain{}
	p.next = 0
}

// Handle consumes pipeline messages. It reports false for any other
// message.
func (p *Pipeline) Handle(msg any) bool {
	switch m := msg.(type) {
	case Spoken:
		if m.token == p.token && p.stage == Speaking {
			p.spoken(m.err)
		}
		return true
	case Settled:
		if m.token == p.token && p.stage == Settling {
			p.timer = nil
			p.sayNext()
		}
		return true
	}
	return false
}

func (p *Pipeline) sayNext() {
	u := Utterance{Text: p.chain.Parts[p.next], Voice: p.voice, Profile: p.chain.Profile}
	p.next++
	p.stage = Speaking

	ctx, cancel := context.WithCancel(context.Background())
	p.stop = cancel
	token, post, synth := p.token, p.post, p.synth
	go func() {
		err := synth.Say(ctx, u)
		if ctx.Err() != nil {
			return
		}
		post(Spoken{token: token, err: err})
	}()
}

func (p *Pipeline) spoken(err error) {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	if err != nil {
		p.log.Warn("speech failed, dropping chain", "err", err)
		p.stage = Idle
		p.chain = Chain{}
		return
	}
	if p.next < len(p.chain.Parts) {
		p.stage = Settling
		token, post := p.token, p.post
		p.timer = time.AfterFunc(p.settle, func() { post(Settled{token: token}) })
		return
	}
	p.stage = Done
	onDone := p.chain.OnDone
	p.chain = Chain{}
	if onDone != nil {
		onDone()
	}
}
