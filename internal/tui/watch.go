// Package tui renders the live watch view for a running convergence loop:
// the latest run's per-iteration verdicts from the history store plus the
// tail of the run logbook, refreshed on a timer.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/history"
	"github.com/Kunj-Arkain/Arkainbrain6.1/internal/logbook"
)

const watchRefreshInterval = 2 * time.Second

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	verdictConverged  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	verdictBlocked    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	verdictMarginal   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	verdictPending    = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	detailStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	logLineStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	forcedBadgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	iterationRowStyle = lipgloss.NewStyle().PaddingLeft(2)
)

// RunSource supplies run state for the watch view. *history.Store
// satisfies it.
type RunSource interface {
	LatestRun(job string) (history.Run, bool, error)
	Iterations(runID string) ([]history.IterationRecord, error)
}

type refreshTickMsg struct{}

type runStateMsg struct {
	run     history.Run
	found   bool
	records []history.IterationRecord
	tail    []string
	err     error
}

// WatchModel is the bubbletea model for `arkain watch`.
type WatchModel struct {
	job     string
	source  RunSource
	log     *logbook.Logbook
	spinner spinner.Model

	run     history.Run
	found   bool
	records []history.IterationRecord
	tail    []string
	err     error
	loaded  bool
}

// NewWatchModel builds a watch view over one job's run history.
func NewWatchModel(job string, source RunSource, log *logbook.Logbook) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return WatchModel{job: job, source: source, log: log, spinner: s}
}

// Init starts the spinner and the first refresh.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh)
}

// Update handles refresh ticks, state loads, and quit keys.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	case refreshTickMsg:
		return m, m.refresh
	case runStateMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.run = msg.run
			m.found = msg.found
			m.records = msg.records
			m.tail = msg.tail
		}
		return m, m.scheduleRefresh()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m WatchModel) refresh() tea.Msg {
	state := runStateMsg{}
	run, found, err := m.source.LatestRun(m.job)
	if err != nil {
		state.err = err
		return state
	}
	state.run = run
	state.found = found
	if found {
		records, err := m.source.Iterations(run.ID)
		if err != nil {
			state.err = err
			return state
		}
		state.records = records
	}
	if m.log != nil {
		state.tail, _ = m.log.Tail(8)
	}
	return state
}

func (m WatchModel) scheduleRefresh() tea.Cmd {
	return tea.Tick(watchRefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// View renders the current run state.
func (m WatchModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", titleStyle.Render("Watching job:"), m.job)

	switch {
	case m.err != nil:
		fmt.Fprintf(&b, "watch error: %v\n", m.err)
	case !m.loaded:
		fmt.Fprintf(&b, "%s loading run state…\n", m.spinner.View())
	case !m.found:
		fmt.Fprintf(&b, "%s waiting for a run to start…\n", m.spinner.View())
	default:
		b.WriteString(m.renderRun())
	}

	if len(m.tail) > 0 {
		b.WriteString("\n" + detailStyle.Render("recent log:") + "\n")
		for _, line := range m.tail {
			b.WriteString(logLineStyle.Render("  "+line) + "\n")
		}
	}
	b.WriteString("\n" + helpStyle.Render("q: quit") + "\n")
	return b.String()
}

func (m WatchModel) renderRun() string {
	var b strings.Builder
	status := m.spinner.View() + " running"
	if m.run.FinishedAt != nil {
		status = verdictStyle(m.run.Verdict).Render(m.run.Verdict)
		if m.run.Forced {
			status += " " + forcedBadgeStyle.Render("(forced on budget exhaustion)")
		}
	}
	fmt.Fprintf(&b, "Run %s · %s\n", shortID(m.run.ID), status)
	fmt.Fprintf(&b, "%s\n\n", detailStyle.Render(fmt.Sprintf("started %s · %d iteration(s)",
		m.run.StartedAt.Local().Format("15:04:05"), m.run.Iterations)))

	for _, record := range m.records {
		line := fmt.Sprintf("iter %d  %s  blockers:%d high:%d warnings:%d",
			record.Iteration,
			verdictStyle(record.Verdict).Render(fmt.Sprintf("%-13s", record.Verdict)),
			record.Blockers, record.Highs, record.Warnings)
		b.WriteString(iterationRowStyle.Render(line) + "\n")
	}
	return b.String()
}

func verdictStyle(verdict string) lipgloss.Style {
	switch verdict {
	case "CONVERGED":
		return verdictConverged
	case "NOT_CONVERGED":
		return verdictBlocked
	case "MARGINAL":
		return verdictMarginal
	default:
		return verdictPending
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
