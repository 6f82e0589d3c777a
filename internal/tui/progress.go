// Package tui renders a live view of one pipeline run.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dusk-indust/quill/internal/workflow"
)

var (
	titleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	labelStyleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	labelStyleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	labelStyleRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	labelStyleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	labelStylePending = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	detailTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

type stageStatus int

const (
	statusPending stageStatus = iota
	statusRunning
	statusDone
	statusDegraded
	statusFailed
)

type stageRow struct {
	status  stageStatus
	message string
	detail  string
}

// eventMsg carries the next event off the run's channel. ok is false once
// the channel is closed.
type eventMsg struct {
	ev workflow.Event
	ok bool
}

// Model is the bubbletea model for a run.
type Model struct {
	input   string
	events  <-chan workflow.Event
	cancel  func()
	spinner spinner.Model
	rows    map[workflow.Stage]*stageRow

	result   workflow.Event
	finished bool
	aborted  bool
}

// New builds a model that consumes events. cancel is called when the user
// quits before the run ends; it may be nil.
func New(input string, events <-chan workflow.Event, cancel func()) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = labelStyleRunning

	rows := make(map[workflow.Stage]*stageRow, workflow.StageCount)
	for _, s := range workflow.Stages() {
		rows[s] = &stageRow{}
	}
	return Model{input: input, events: events, cancel: cancel, spinner: sp, rows: rows}
}

func waitForEvent(ch <-chan workflow.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		return eventMsg{ev: ev, ok: ok}
	}
}

// Init starts the spinner and the event pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update applies one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.finished {
				m.aborted = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		if !msg.ok {
			m.finished = true
			return m, tea.Quit
		}
		m.apply(msg.ev)
		if msg.ev.Terminal() {
			m.finished = true
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)
	}
	return m, nil
}

func (m *Model) apply(ev workflow.Event) {
	row := m.rows[ev.Stage]
	switch ev.Kind {
	case workflow.EventStageStarted:
		if row != nil {
			row.status = statusRunning
			row.message = ev.Message
		}
	case workflow.EventStageCompleted:
		if row != nil {
			row.status = statusDone
			row.message = ev.Message
		}
	case workflow.EventStageDegraded:
		if row != nil {
			row.status = statusDegraded
			row.message = ev.Message
			row.detail = ev.Error
		}
	case workflow.EventWorkflowFailed:
		if row != nil {
			row.status = statusFailed
			row.message = ev.Message
			row.detail = ev.Error
		}
		m.result = ev
	case workflow.EventWorkflowCompleted:
		m.result = ev
	}
}

// View renders the stage table and the outcome.
func (m Model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", titleStyle.Render("quill"), detailTextStyle.Render(m.input))

	if m.result.Kind == workflow.EventWorkflowCompleted && m.result.Cached {
		b.WriteString(labelStyleDone.Render("✓ Using cached blog post"))
		b.WriteString("\n")
		return b.String()
	}

	for _, s := range workflow.Stages() {
		b.WriteString(m.renderRow(s, m.rows[s]))
		b.WriteString("\n")
	}

	switch {
	case m.result.Kind == workflow.EventWorkflowCompleted:
		b.WriteString("\n" + labelStyleDone.Render("✓ Blog post ready") + "\n")
	case m.result.Kind == workflow.EventWorkflowFailed:
		b.WriteString("\n" + labelStyleFailed.Render("✗ "+m.result.Message) + "\n")
	case m.aborted:
		b.WriteString("\n" + labelStyleWarn.Render("cancelled") + "\n")
	default:
		b.WriteString("\n" + detailTextStyle.Render("q to cancel") + "\n")
	}
	return b.String()
}

func (m Model) renderRow(s workflow.Stage, row *stageRow) string {
	name := fmt.Sprintf("%-8s", s)
	switch row.status {
	case statusRunning:
		return fmt.Sprintf("%s %s %s", m.spinner.View(), labelStyleRunning.Render(name), row.message)
	case statusDone:
		return fmt.Sprintf("%s %s %s", labelStyleDone.Render("✓"), labelStyleDone.Render(name), row.message)
	case statusDegraded:
		return fmt.Sprintf("%s %s %s\n%s", labelStyleWarn.Render("!"), labelStyleWarn.Render(name), row.message, detailTextStyle.Render("    "+row.detail))
	case statusFailed:
		return fmt.Sprintf("%s %s %s\n%s", labelStyleFailed.Render("✗"), labelStyleFailed.Render(name), row.message, detailTextStyle.Render("    "+row.detail))
	default:
		return fmt.Sprintf("%s %s", labelStylePending.Render("·"), labelStylePending.Render(name))
	}
}

// Result returns the terminal event, if one arrived.
func (m Model) Result() (workflow.Event, bool) {
	return m.result, m.result.Terminal()
}

// Run drives the model until the run ends or the user quits. It returns the
// terminal event; ok is false when the run was abandoned.
func Run(ctx context.Context, input string, events <-chan workflow.Event, cancel func(), opts ...tea.ProgramOption) (ev workflow.Event, ok bool, err error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(New(input, events, cancel), opts...).Run()
	if err != nil {
		return workflow.Event{}, false, fmt.Errorf("tui: %w", err)
	}
	ev, ok = final.(Model).Result()
	return ev, ok, nil
}
