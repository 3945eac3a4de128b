// Package tui provides a Bubble Tea terminal user interface for the
// archive downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/handiism/djb-downloader/internal/config"
	"github.com/handiism/djb-downloader/internal/djb"
	"github.com/handiism/djb-downloader/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	stationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	// StateCredentials asks for the archive username and password when
	// the settings file does not provide them.
	StateCredentials State = iota

	// StateInitializing covers login, station detection and schedule
	// expansion.
	StateInitializing

	// StateStationSelect lets the user pick between several detected
	// stations.
	StateStationSelect

	// StateCallsign asks for a manual callsign after detection failed.
	StateCallsign

	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	inputs   []textinput.Model // username, password
	focus    int
	callsign textinput.Model
	spinner  spinner.Model
	progress progress.Model

	settings *config.Settings
	logger   zerolog.Logger
	logs     []LogEntry
	err      error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent

	// Station disambiguation
	candidates []djb.Station
	cursor     int
	indexURL   string

	// Batch progress
	segmentsDone  int32
	segmentsTotal int32
	receivedBytes int64
	summary       *download.Summary

	width  int
	height int
}

// NewModel creates a TUI model over loaded settings. When the settings
// already carry credentials the credential form is skipped and the run
// starts immediately.
func NewModel(settings *config.Settings, logger zerolog.Logger) Model {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 100
	user.Width = 40
	user.SetValue(settings.Username)

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 100
	pass.Width = 40
	pass.EchoMode = textinput.EchoPassword
	pass.SetValue(settings.Password)

	callsign := textinput.New()
	callsign.Placeholder = "BSR"
	callsign.CharLimit = 20
	callsign.Width = 20

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan download.ProgressEvent, 64)

	m := Model{
		state:    StateCredentials,
		inputs:   []textinput.Model{user, pass},
		callsign: callsign,
		spinner:  sp,
		progress: prog,
		settings: settings,
		logger:   logger,
		logs:     make([]LogEntry, 0),
		ctx:      ctx,
		cancel:   cancel,
		events:   events,
	}
	m.manager = newManager(settings, logger, events)

	if settings.Username != "" && settings.Password != "" {
		m.state = StateInitializing
	} else {
		m.inputs[0].Focus()
	}
	return m
}

// newManager wires a Manager whose progress events land in the TUI's
// channel. A full channel drops the event rather than stalling the run.
func newManager(settings *config.Settings, logger zerolog.Logger, events chan download.ProgressEvent) *download.Manager {
	return download.NewManager(settings, logger, func(event download.ProgressEvent) {
		select {
		case events <- event:
		default:
		}
	})
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, m.listenForEvents()}
	if m.state == StateInitializing {
		cmds = append(cmds, m.initialize())
	}
	return tea.Batch(cmds...)
}

// Message types
type (
	// ProgressMsg is sent when the manager reports a progress event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent when initialization completes or needs a
	// station decision.
	InitDoneMsg struct {
		Err error
	}

	// RunDoneMsg is sent when the whole batch finished.
	RunDoneMsg struct {
		Summary *download.Summary
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateCredentials || m.state == StateStationSelect || m.state == StateCallsign {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			switch m.state {
			case StateCredentials:
				if m.inputs[0].Value() != "" && m.inputs[1].Value() != "" {
					m.settings.Username = m.inputs[0].Value()
					m.settings.Password = m.inputs[1].Value()
					m.state = StateInitializing
					return m, tea.Batch(m.initialize(), m.spinner.Tick)
				}
				// Move focus forward until both fields are filled.
				m.setFocus((m.focus + 1) % len(m.inputs))
			case StateStationSelect:
				m.manager.SetStation(m.candidates[m.cursor])
				m.state = StateInitializing
				return m, tea.Batch(m.initialize(), m.spinner.Tick)
			case StateCallsign:
				if m.callsign.Value() != "" {
					m.manager.SetStation(djb.Station{
						Code:     m.settings.StationSelector,
						Callsign: m.callsign.Value(),
					})
					m.state = StateInitializing
					return m, tea.Batch(m.initialize(), m.spinner.Tick)
				}
			}

		case "tab", "shift+tab":
			if m.state == StateCredentials {
				m.setFocus((m.focus + 1) % len(m.inputs))
			}

		case "up", "k":
			if m.state == StateStationSelect && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.state == StateStationSelect && m.cursor < len(m.candidates)-1 {
				m.cursor++
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run with a fresh manager and context.
				m.logs = nil
				m.err = nil
				m.summary = nil
				m.candidates = nil
				m.cursor = 0
				m.segmentsDone = 0
				m.segmentsTotal = 0
				m.receivedBytes = 0
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.events = make(chan download.ProgressEvent, 64)
				m.manager = newManager(m.settings, m.logger, m.events)
				m.state = StateInitializing
				return m, tea.Batch(m.initialize(), m.spinner.Tick, m.listenForEvents())
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		// Verbose chatter stays in the log file unless debugging.
		if msg.Event.Level == download.LevelVerbose && m.settings.LogLevel != "debug" {
			return m, m.listenForEvents()
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}
		cmds = append(cmds, m.listenForEvents())

	case InitDoneMsg:
		switch err := msg.Err.(type) {
		case nil:
			m.state = StateDownloading
			cmds = append(cmds, m.startRun(), m.tickProgress())
		case *download.StationAmbiguousError:
			m.state = StateStationSelect
			m.candidates = err.Candidates
			m.cursor = 0
			m.indexURL = err.IndexURL
		case *download.StationUnresolvedError:
			m.state = StateCallsign
			m.indexURL = err.IndexURL
			m.callsign.Focus()
		default:
			m.state = StateError
			m.err = msg.Err
		}

	case RunDoneMsg:
		m.summary = msg.Summary
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from manager
		if m.manager != nil && m.state == StateDownloading {
			done, total, bytes := m.manager.GetProgress()
			m.segmentsDone = done
			m.segmentsTotal = total
			m.receivedBytes = bytes

			var percent float64
			if total > 0 {
				percent = float64(done) / float64(total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update the focused text input
	switch m.state {
	case StateCredentials:
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	case StateCallsign:
		var cmd tea.Cmd
		m.callsign, cmd = m.callsign.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(index int) {
	m.focus = index
	for i := range m.inputs {
		if i == index {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// listenForEvents waits for the next manager progress event.
func (m Model) listenForEvents() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("DJB Archive Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Batch download broadcast recordings"))
	b.WriteString("\n\n")

	switch m.state {
	case StateCredentials:
		b.WriteString(m.viewCredentials())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateStationSelect:
		b.WriteString(m.viewStationSelect())
	case StateCallsign:
		b.WriteString(m.viewCallsign())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewCredentials() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Archive credentials:"))
	b.WriteString("\n\n")
	for _, input := range m.inputs {
		b.WriteString(input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output path: %s", m.settings.OutputDir)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Schedules: %d", len(m.settings.Schedules))))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Contacting the archive..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewStationSelect() string {
	var b strings.Builder

	b.WriteString(warningStyle.Render("Multiple stations on this account:"))
	b.WriteString("\n\n")
	for i, station := range m.candidates {
		line := fmt.Sprintf("  %s (selector %d)", station.Callsign, station.Code)
		if i == m.cursor {
			b.WriteString(stationStyle.Render("▸" + line[1:]))
		} else {
			b.WriteString(dimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewCallsign() string {
	var b strings.Builder

	b.WriteString(warningStyle.Render("Could not auto-detect the station callsign."))
	b.WriteString("\n")
	if m.indexURL != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Check the index page in a browser: %s", m.indexURL)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Enter the callsign used in archive filenames:"))
	b.WriteString("\n\n")
	b.WriteString(m.callsign.View())
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	station := m.manager.Station()
	if station.Callsign != "" {
		b.WriteString(stationStyle.Render(fmt.Sprintf("Station: %s", station.Callsign)))
		b.WriteString("\n\n")
	}

	var percent float64
	if m.segmentsTotal > 0 {
		percent = float64(m.segmentsDone) / float64(m.segmentsTotal)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Segments: %d/%d | Received: %.2f MB",
		m.segmentsDone,
		m.segmentsTotal,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	content := "Batch complete!"
	if m.summary != nil {
		content = fmt.Sprintf(
			"Batch complete!\n\n"+
				"Airings: %d\n"+
				"Merged: %d\n"+
				"Partial: %d\n"+
				"Failed: %d\n"+
				"Size: %.2f MB",
			m.summary.Airings,
			m.summary.FullyMerged,
			m.summary.PartiallyMerged,
			m.summary.Failed,
			float64(m.receivedBytes)/1024/1024,
		)
	}
	b.WriteString(boxStyle.Render(content))

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateCredentials:
		return "tab: next field • enter: start • esc: quit"
	case StateStationSelect:
		return "up/down: move • enter: select • esc: quit"
	case StateCallsign:
		return "enter: confirm • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: run again • q: quit"
	}
	return ""
}

// initialize logs in, resolves the station and expands the plan.
func (m Model) initialize() tea.Cmd {
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		return InitDoneMsg{Err: manager.Initialize(ctx)}
	}
}

// startRun runs the batch in the background.
func (m Model) startRun() tea.Cmd {
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		summary, err := manager.Run(ctx)
		return RunDoneMsg{Summary: summary, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger zerolog.Logger) error {
	p := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
