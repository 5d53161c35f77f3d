// ABOUTME: Bubbletea model for the timeline watch screen
// ABOUTME: Polls status, stats and regions and maps keys to transport commands
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const requestTimeout = 2 * time.Second

// Doer sends one command to the daemon; *client.Client implements it
type Doer interface {
	Do(ctx context.Context, cmd command.Command) (command.Result, error)
}

// Model represents the watch screen state
type Model struct {
	client     Doer
	serverName string
	interval   time.Duration

	connected bool
	status    command.Status
	stats     *command.Stats
	regions   []timeline.Info
	lastErr   string
	updated   time.Time

	showRegions bool
	quitting    bool
	width       int
}

// SnapshotMsg carries one poll of the daemon
type SnapshotMsg struct {
	Status  *command.Status
	Stats   *command.Stats
	Regions []timeline.Info
	Err     error
}

// ActionMsg carries the result of a key-triggered command
type ActionMsg struct {
	Name   string
	Result command.Result
	Err    error
}

type tickMsg time.Time

// NewModel creates a watch model polling client every interval
func NewModel(client Doer, serverName string, interval time.Duration) Model {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return Model{
		client:      client,
		serverName:  serverName,
		interval:    interval,
		showRegions: true,
	}
}

// Init starts polling
func (m Model) Init() tea.Cmd {
	return m.poll()
}

func (m Model) poll() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var snap SnapshotMsg
		res, err := client.Do(ctx, command.GetStatus{})
		if err != nil {
			snap.Err = err
			return snap
		}
		snap.Status = res.Status

		// stats are optional on the daemon side
		if res, err := client.Do(ctx, command.GetStats{}); err == nil && res.OK {
			snap.Stats = res.Stats
		}
		if res, err := client.Do(ctx, command.ListRegions{}); err == nil && res.OK {
			snap.Regions = res.Regions
		}
		return snap
	}
}

func (m Model) do(cmd command.Command) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := client.Do(ctx, cmd)
		return ActionMsg{Name: cmd.Name(), Result: res, Err: err}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case SnapshotMsg:
		m.applySnapshot(msg)
		return m, m.tick()
	case tickMsg:
		return m, m.poll()
	case ActionMsg:
		switch {
		case msg.Err != nil:
			m.lastErr = fmt.Sprintf("%s: %v", msg.Name, msg.Err)
		case !msg.Result.OK:
			m.lastErr = fmt.Sprintf("%s: %s", msg.Name, msg.Result.Code)
		default:
			m.lastErr = ""
			if msg.Result.Status != nil {
				m.status = *msg.Result.Status
			}
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ":
		if m.status.State == "playing" {
			return m, m.do(command.Pause{})
		}
		return m, m.do(command.Play{})
	case "s":
		return m, m.do(command.Stop{})
	case "0", "home":
		return m, m.do(command.Seek{Beat: 0})
	case "+", "=":
		return m, m.do(command.SetTempo{BPM: m.status.Tempo + 1})
	case "-":
		return m, m.do(command.SetTempo{BPM: m.status.Tempo - 1})
	case "r":
		m.showRegions = !m.showRegions
	}
	return m, nil
}

func (m *Model) applySnapshot(msg SnapshotMsg) {
	if msg.Err != nil {
		m.connected = false
		m.lastErr = msg.Err.Error()
		return
	}

	m.connected = true
	m.updated = time.Now()
	if msg.Status != nil {
		m.status = *msg.Status
	}
	m.stats = msg.Stats
	m.regions = msg.Regions
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// View renders the watch screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Timeline " + m.serverName))
	b.WriteString("\n\n")

	if !m.connected {
		b.WriteString(warnStyle.Render("Disconnected"))
		b.WriteString("\n")
	} else {
		field(&b, "State", m.status.State)
		field(&b, "Position", formatBeat(m.status.Position))
		field(&b, "Tempo", fmt.Sprintf("%.2f BPM", m.status.Tempo))
	}

	if m.stats != nil {
		b.WriteString("\n")
		field(&b, "Callbacks", fmt.Sprintf("%d (period %d frames)", m.stats.Output.Callbacks, m.stats.Output.PeriodFrames))
		field(&b, "Underruns", fmt.Sprintf("%d", m.stats.Output.Underruns))
		field(&b, "Buffered", fmt.Sprintf("%d frames (%s)", m.stats.Output.BufferedFrames, m.stats.Output.Latency))
		field(&b, "Fill time", fmt.Sprintf("%s (max %s)", m.stats.Output.FillTime, m.stats.Output.MaxFillTime))
		field(&b, "Render", fmt.Sprintf("%d cycles, %d active regions", m.stats.Engine.Cycles, m.stats.Engine.ActiveRegions))
		field(&b, "Clipped", fmt.Sprintf("%d samples", m.stats.Engine.ClippedSample))
		field(&b, "Cache", fmt.Sprintf("%d items, %d hits, %d fetches", m.stats.Content.Cached, m.stats.Content.Hits, m.stats.Content.Fetches))
	}

	if m.showRegions && m.connected {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("Regions (%d)", len(m.regions))))
		b.WriteString("\n")
		for _, r := range m.regions {
			b.WriteString(renderRegion(r, m.status.Position))
			b.WriteString("\n")
		}
	}

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render("Error: " + m.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(faintStyle.Render("space:Play/Pause  s:Stop  0:Rewind  +/-:Tempo  r:Regions  q:Quit"))
	b.WriteString("\n")

	return b.String()
}

func field(b *strings.Builder, name, value string) {
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s", name+":")))
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")
}

func renderRegion(r timeline.Info, head float64) string {
	marker := " "
	if head >= r.Position && head < r.Position+r.Duration {
		marker = ">"
	}
	source := r.ContentID
	switch {
	case source == "":
		source = "(silent)"
	case !r.Resolved:
		source += " (unresolved)"
	}
	return fmt.Sprintf(" %s %s  %s +%.2f  %s", marker, truncate(r.ID, 8), formatBeat(r.Position), r.Duration, truncate(source, 24))
}

// formatBeat renders a beat position as bar.beat.fraction assuming 4/4
func formatBeat(beat float64) string {
	bar := int(beat/4) + 1
	inBar := beat - float64(bar-1)*4
	return fmt.Sprintf("%d.%d (%.3f)", bar, int(inBar)+1, beat)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
