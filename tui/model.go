// Package tui is a terminal control surface for sessions without a window.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pianorain/app"
	"pianorain/visualizer"
)

const (
	refreshInterval = 100 * time.Millisecond
	seekStep        = 5.0
	barWidth        = 40
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e0a030"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e04040"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
)

// Player is the controller the terminal drives.
type Player interface {
	TogglePlay() bool
	Seek(sec float64) error
	ToggleRecording(ctx context.Context) (string, error)
	ToggleOrientation() visualizer.Orientation
	Status() app.Status
}

type Model struct {
	player   Player
	ctx      context.Context
	status   app.Status
	message  string
	err      error
	quitting bool
}

type tickMsg time.Time

type recordMsg struct {
	output string
	err    error
}

func NewModel(ctx context.Context, p Player) Model {
	return Model{player: p, ctx: ctx, status: p.Status()}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) toggleRecording() tea.Cmd {
	return func() tea.Msg {
		out, err := m.player.ToggleRecording(m.ctx)
		return recordMsg{output: out, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case " ", "p":
			m.player.TogglePlay()

		case "o":
			m.player.ToggleOrientation()

		case "r":
			if m.status.Recording {
				m.message = "encoding recording..."
			}
			m.status = m.player.Status()
			return m, m.toggleRecording()

		case "left", "h":
			m.err = m.player.Seek(math.Max(0, m.status.CurrentTime-seekStep))

		case "right", "l":
			m.err = m.player.Seek(m.status.CurrentTime + seekStep)

		case "home", "0":
			m.err = m.player.Seek(0)
		}
		m.status = m.player.Status()

	case recordMsg:
		m.err = msg.err
		m.message = ""
		if msg.output != "" {
			m.message = "saved " + msg.output
		}
		m.status = m.player.Status()

	case tickMsg:
		m.status = m.player.Status()
		return m, tick()
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.status
	c := s.Controls

	var b strings.Builder

	title := "pianorain"
	if s.Input != "" {
		title += "  " + s.Input
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")

	play := c.PlayPause.Icon.Glyph() + " " + c.PlayPause.Title
	rec := c.Record.Icon.Glyph() + " " + c.Record.Title
	if c.Record.Active {
		rec = activeStyle.Render(rec)
	}
	orient := c.Orientation.Icon.Glyph() + " " + s.Orientation
	fmt.Fprintf(&b, "%s   %s   %s\n", play, rec, orient)

	fmt.Fprintf(&b, "%s %s / %s\n", progressBar(s.CurrentTime, s.Duration, barWidth), clock(s.CurrentTime), clock(s.Duration))
	fmt.Fprintf(&b, "%s  notes:%d", s.Phase, s.Notes)
	if s.Issues > 0 {
		fmt.Fprintf(&b, "  issues:%d", s.Issues)
	}
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(m.message + "\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("space:play/pause  r:record  o:orientation  ←/→:seek  0:start  q:quit"))
	b.WriteString("\n")
	return b.String()
}

func progressBar(pos, duration float64, width int) string {
	filled := 0
	if duration > 0 {
		filled = int(math.Round(pos / duration * float64(width)))
	}
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

func clock(sec float64) string {
	if !(sec > 0) {
		sec = 0
	}
	total := int(sec)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Run blocks until the user quits or ctx is done.
func Run(ctx context.Context, p Player) error {
	prog := tea.NewProgram(NewModel(ctx, p), tea.WithContext(ctx))
	_, err := prog.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
