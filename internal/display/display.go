// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent bake status bar and an input
// prompt at the bottom of the terminal. All application output is
// printed above the rendered area via Program.Println / Printf,
// ensuring concurrent writes never garble the display.
package display

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/schedule"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// ── Output styles (soft palette) ──

	// BannerStyle — muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Chat — soft sky blue for conversational replies.
	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	// Heading — soft mint for section and wizard-step headers.
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	// Primary text — light zinc for the main content lines.
	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Secondary text — dimmed zinc for hints, tips, metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// Urgent — soft coral for errors/alerts.
	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking).  Other goroutines may
// safely call [UI.Println], [UI.Printf], and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	store   domain.BakeStore
	done    atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI(store domain.BakeStore) *UI {
	return &UI{
		store:   store,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe.
// Each argument is converted via fmt.Sprint and printed on its own
// line(s).  If the program hasn't started yet, falls back to
// fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
// The output is printed on its own line (a trailing newline in the
// format string will produce an extra blank line).
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format, a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────
// These give output visual hierarchy with lipgloss colors.

// PrintChat prints a conversational reply line.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintHeading prints a section header like "New bake — step 2/4".
func (u *UI) PrintHeading(text string) {
	u.Println(headingStyle.Render("  " + text))
}

// PrintLine prints a main content line.
func (u *UI) PrintLine(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("proof") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop.  Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Use a plain-text prompt so the textinput width math stays correct.
	// Lipgloss-styled prompts add invisible ANSI bytes that break the
	// internal offset/scroll calculations for long input.
	ti.Prompt = "proof> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		store:   u.store,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn: func(v string) {
			u.PrintUserInput(v)
		},
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// Teardown is an alias for Quit kept for drop-in compatibility.
func (u *UI) Teardown() { u.Quit() }

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	store   domain.BakeStore
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string) // prints user input into scrollback
	bake    *bakeInfo
	width   int
}

// bakeInfo is the per-tick snapshot the status bar renders from.
type bakeInfo struct {
	stage      string
	elapsed    time.Duration
	untilDue   time.Duration // negative when overdue
	timedStage bool
	untilBake  time.Duration
	paused     bool
}

// Messages.
type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Return a Cmd that prints the echo — this runs
				// outside Update so it won't deadlock on msgs.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		// Let the text input use the full width minus the prompt ("proof> " = 7 chars).
		const promptLen = 7
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil

	case tickMsg:
		m.refreshBake()
		cmds := []tea.Cmd{tickCmd()}
		if m.bake != nil {
			cmds = append(cmds, tea.SetWindowTitle(m.titleStr()))
		} else {
			cmds = append(cmds, tea.SetWindowTitle("Proofbox"))
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refreshBake reads the active bake and projects the current schedule.
// Pure observation: the bar never writes anything back.
func (m *model) refreshBake() {
	b, err := m.store.ActiveBake(context.Background())
	if err != nil || b == nil {
		m.bake = nil
		return
	}

	now := time.Now()
	info := &bakeInfo{
		stage:     b.Stage.String(),
		elapsed:   b.Elapsed(now),
		paused:    b.Paused(),
		untilBake: b.TargetTime.Sub(now),
	}

	plan := schedule.Project(b.TargetTime, b.Environment.AmbientTemp)
	switch b.Stage {
	case domain.StageBulkFermentation:
		info.timedStage = true
		info.untilDue = plan.StartProof.Sub(now)
	case domain.StageFinalProof:
		info.timedStage = true
		info.untilDue = plan.BakeAt.Sub(now)
	}
	m.bake = info
}

func (m model) titleStr() string {
	b := m.bake
	if b.paused {
		return fmt.Sprintf("Proofbox — %s PAUSED at %s", b.stage, fmtDuration(b.elapsed))
	}
	return fmt.Sprintf("Proofbox — %s %s", b.stage, fmtDuration(b.elapsed))
}

func (m model) View() string {
	var b strings.Builder

	if m.bake != nil {
		b.WriteString(m.renderBar())
		b.WriteByte('\n')
	}

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar() string {
	info := m.bake
	sep := sepStyle.Render("  │  ")

	parts := []string{
		stageStyle.Render(info.stage),
		labelStyle.Render("elapsed ") + clockStyle.Render(fmtDuration(info.elapsed)),
	}
	if info.paused {
		parts = append(parts, pausedStyle.Render("PAUSED"))
	} else if info.timedStage {
		if info.untilDue < 0 {
			parts = append(parts, overdueStyle.Render("over by "+fmtDuration(-info.untilDue)))
		} else {
			parts = append(parts, labelStyle.Render("stage ends in ")+clockStyle.Render(fmtDuration(info.untilDue)))
		}
	}
	if info.untilBake > 0 {
		parts = append(parts, labelStyle.Render("bake in ")+clockStyle.Render(fmtDuration(info.untilBake)))
	}

	content := " " + strings.Join(parts, sep) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

// ── Helpers ──────────────────────────────────────────────────────

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
