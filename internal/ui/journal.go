package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chris-regnier/murmur/internal/session"
	"github.com/chris-regnier/murmur/internal/speech"
	"github.com/chris-regnier/murmur/internal/stats"
	"github.com/chris-regnier/murmur/internal/storage"
)

// JournalConfig holds the TUI settings that come from configuration.
type JournalConfig struct {
	// Identity is the identity as supplied by the user; empty when none was.
	Identity string
	Theme    Theme
	MaxWidth int
	Narrate  speech.Profile
	Echo     speech.Profile
	Now      func() time.Time
	Logger   *slog.Logger
}

// storeChangedMsg reports that the journal was written by someone else.
type storeChangedMsg struct{}

// Header is the title line of the journal screen.
func Header(identity string, n int) string {
	posts := fmt.Sprintf("(%d %s)", n, pluralize(n, "post", "posts"))
	if strings.TrimSpace(identity) == "" {
		return "My diary " + posts
	}
	return fmt.Sprintf("%s's Diary %s", storage.Identity(identity), posts)
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// inputBuffer exposes the text input to the session.
type inputBuffer struct {
	in *textinput.Model
}

func (b inputBuffer) Value() string     { return b.in.Value() }
func (b inputBuffer) SetValue(s string) { b.in.SetValue(s) }

func (b inputBuffer) BeforeCursor() string {
	r := []rune(b.in.Value())
	return string(r[:min(b.in.Position(), len(r))])
}

// journalModel is the Bubble Tea model for the journal screen.
type journalModel struct {
	cfg      JournalConfig
	journal  *storage.Journal
	pipeline *speech.Pipeline
	session  *session.Session
	cards    *cardList
	input    textinput.Model
	log      *slog.Logger

	watch <-chan struct{}

	statsOpen bool
	statsView viewport.Model

	width  int
	height int
}

// newJournalModel loads the journal and builds the session around it.
func newJournalModel(j *storage.Journal, p *speech.Pipeline, cfg JournalConfig) *journalModel {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := &journalModel{
		cfg:      cfg,
		journal:  j,
		pipeline: p,
		cards:    newCardList(cfg.Theme),
		input:    textinput.New(),
		log:      cfg.Logger,
	}
	m.input.Prompt = "› "
	m.input.PromptStyle = cfg.Theme.AccentStyle()
	m.input.TextStyle = lipgloss.NewStyle().Foreground(cfg.Theme.Primary).Background(cfg.Theme.Background)
	m.input.PlaceholderStyle = cfg.Theme.HelpStyle()

	m.session = session.New(j.Load(), j, p, m.cards, inputBuffer{in: &m.input}, session.Options{
		Narrate: cfg.Narrate,
		Echo:    cfg.Echo,
		Now:     cfg.Now,
		Logger:  cfg.Logger,
	})
	m.session.Start()
	m.syncInput()
	return m
}

func (m *journalModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.watch))
}

// waitForChange turns the next store notification into a message.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func (m *journalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.pipeline.Handle(msg) {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case storeChangedMsg:
		m.reload()
		return m, waitForChange(m.watch)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		if m.statsOpen {
			return m.updateStats(msg)
		}
		if m.session.Mode() == session.Browsing {
			switch msg.String() {
			case "q":
				return m.quit()
			case "s":
				m.openStats()
				return m, nil
			}
		}

		pass := m.session.Key(keyFromMsg(msg))
		m.syncInput()
		if !pass || m.session.Mode() == session.Browsing {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *journalModel) quit() (tea.Model, tea.Cmd) {
	m.pipeline.Cancel()
	return m, tea.Quit
}

// reload merges annotations written by another process.
func (m *journalModel) reload() {
	fresh, err := m.journal.Entries()
	if err != nil {
		m.log.Warn("reloading journal after change", "err", err)
		return
	}
	if m.session.MergeAnnotations(fresh) {
		m.log.Info("annotations updated from store")
	}
}

// syncInput focuses the input in the writing modes only.
func (m *journalModel) syncInput() {
	switch m.session.Mode() {
	case session.Browsing:
		m.input.Blur()
		m.input.Placeholder = "browsing · space to listen"
	case session.Editing:
		m.input.Focus()
		m.input.Placeholder = "edit the entry"
	default:
		m.input.Focus()
		m.input.Placeholder = "what happened?"
	}
}

func (m *journalModel) openStats() {
	m.pipeline.Cancel()
	m.statsOpen = true
	m.statsView = viewport.New(m.contentWidth(), max(m.height-2, 1))
	m.statsView.Style = m.cfg.Theme.ViewPaneStyle()
	m.statsView.SetContent(m.statsContent())
}

func (m *journalModel) statsContent() string {
	summary := stats.Compute(m.session.Entries(), m.cfg.Now())
	report := stats.Markdown(summary, stats.Title(m.cfg.Identity))
	return RenderMarkdown(report, m.contentWidth(), m.cfg.Theme.MarkdownStyle)
}

func (m *journalModel) updateStats(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "s", "q":
		m.statsOpen = false
		return m, nil
	}
	var cmd tea.Cmd
	m.statsView, cmd = m.statsView.Update(msg)
	return m, cmd
}

// contentWidth returns the effective content width, respecting max_width.
func (m *journalModel) contentWidth() int {
	if m.cfg.MaxWidth > 0 && m.width > m.cfg.MaxWidth {
		return m.cfg.MaxWidth
	}
	return m.width
}

func (m *journalModel) layout() {
	cw := m.contentWidth()
	m.input.Width = max(cw-lipgloss.Width(m.input.Prompt)-1, 1)
	// header, input, separator and footer
	m.cards.SetSize(cw, m.height-4)
	if m.statsOpen {
		m.statsView.Width = cw
		m.statsView.Height = max(m.height-2, 1)
		m.statsView.SetContent(m.statsContent())
	}
}

func (m *journalModel) View() string {
	if m.width == 0 {
		// No PaintScreen here: dimensions are unknown until the first WindowSizeMsg.
		return "Loading..."
	}
	theme := m.cfg.Theme
	cw := m.contentWidth()

	var b strings.Builder
	if m.statsOpen {
		b.WriteString(m.statsView.View())
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle().Render("↑/↓ scroll • s/esc close"))
		return theme.PaintScreen(b.String(), m.width, m.height, cw)
	}

	header := theme.HeaderStyle().Render(Header(m.cfg.Identity, m.cards.Count()))
	badge := theme.AccentStyle().Render(" " + m.session.Mode().String())
	b.WriteString(header + badge + "\n")
	b.WriteString(m.input.View() + "\n")
	b.WriteString(theme.HelpStyle().Render(strings.Repeat("─", max(cw, 0))) + "\n")
	b.WriteString(m.cards.View() + "\n")
	b.WriteString(m.footer())

	return theme.PaintScreen(b.String(), m.width, m.height, cw)
}

func (m *journalModel) footer() string {
	if err := m.session.Err(); err != nil {
		return m.cfg.Theme.DangerStyle().Render("not saved: " + err.Error())
	}
	var help string
	switch m.session.Mode() {
	case session.Browsing:
		help = "↑/↓ select • space listen • enter edit • t shift time • s stats • esc write • q quit"
	case session.Editing:
		help = "enter save • esc discard"
	default:
		help = "enter save • esc browse • ctrl+c quit"
	}
	if !m.pipeline.Available() {
		help += " • muted"
	}
	return m.cfg.Theme.HelpStyle().Render(help)
}

// keyFromMsg translates a terminal key event into a session key.
func keyFromMsg(msg tea.KeyMsg) session.Key {
	switch msg.Type {
	case tea.KeyEsc:
		return session.Key{Name: "esc"}
	case tea.KeyEnter:
		return session.Key{Name: "enter", Mod: msg.Alt}
	case tea.KeySpace:
		return session.Key{Name: "space", Rune: ' ', Mod: msg.Alt}
	case tea.KeyUp:
		return session.Key{Name: "up"}
	case tea.KeyDown:
		return session.Key{Name: "down"}
	case tea.KeyBackspace:
		return session.Key{Name: "backspace"}
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && !msg.Paste {
			k := session.Printable(msg.Runes[0])
			k.Mod = msg.Alt
			return k
		}
		return session.Key{Name: "paste"}
	}
	name := msg.String()
	return session.Key{Name: name, Mod: msg.Alt || strings.HasPrefix(name, "ctrl+")}
}

// RunJournal runs the interactive journal until the user quits. Speech
// results and store changes are delivered to the program as messages.
func RunJournal(ctx context.Context, j *storage.Journal, p *speech.Pipeline, cfg JournalConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newJournalModel(j, p, cfg)
	watch, err := j.Watch(ctx)
	if err != nil {
		m.log.Warn("store changes will not be picked up", "err", err)
	}
	m.watch = watch

	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	p.Attach(func(msg any) { prog.Send(msg) })
	defer p.Cancel()

	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running journal: %w", err)
	}
	return nil
}

var _ tea.Model = (*journalModel)(nil)
