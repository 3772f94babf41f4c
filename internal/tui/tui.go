// Package tui provides a Bubble Tea terminal user interface for dramabox-dl.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/saputra/dramabox-dl/internal/config"
	"github.com/saputra/dramabox-dl/internal/download"
	"github.com/saputra/dramabox-dl/internal/dramabox"
	"github.com/saputra/dramabox-dl/internal/history"
	httpx "github.com/saputra/dramabox-dl/internal/http"
	"github.com/saputra/dramabox-dl/internal/model"
	"github.com/saputra/dramabox-dl/internal/syncer"
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
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateSyncing
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
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	cfg       *config.Config
	logs      []LogEntry
	stats     *syncer.Stats
	err       error

	events chan download.ProgressEvent

	ctx    context.Context
	cancel context.CancelFunc

	// Episode progress within the drama currently downloading
	done  int
	total int

	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(cfg *config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "drama ID (leave empty to sync the whole catalog)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		cfg:       cfg,
		logs:      make([]LogEntry, 0),
		events:    make(chan download.ProgressEvent, 64),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent for every download progress event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// SyncDoneMsg is sent when the sync run finishes.
	SyncDoneMsg struct {
		Stats *syncer.Stats
		Err   error
	}
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
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateSyncing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput {
				m.state = StateSyncing
				return m, tea.Batch(m.startSync(m.textInput.Value()), m.waitForEvent(), m.spinner.Tick)
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run
				m.state = StateInput
				m.logs = nil
				m.stats = nil
				m.err = nil
				m.done = 0
				m.total = 0
				m.events = make(chan download.ProgressEvent, 64)
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Total > 0 {
			m.done = msg.Event.Done
			m.total = msg.Event.Total
			cmds = append(cmds, m.progress.SetPercent(float64(m.done)/float64(m.total)))
		}
		if msg.Event.Level != download.LevelVerbose || m.verbose {
			m.logs = append(m.logs, LogEntry{
				Message: msg.Event.Message,
				Level:   msg.Event.Level,
			})
			// Keep only last 10 logs
			if len(m.logs) > 10 {
				m.logs = m.logs[len(m.logs)-10:]
			}
		}
		cmds = append(cmds, m.waitForEvent())

	case SyncDoneMsg:
		m.stats = msg.Stats
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// waitForEvent blocks on the progress channel until the next event arrives.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: ev}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("📺 DramaBox Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Sync and download DramaBox dramas"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateSyncing:
		b.WriteString(m.viewSyncing())
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

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter a drama ID, or press enter for a full catalog sync:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.cfg.Download.Path)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewSyncing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Syncing..."))
	b.WriteString("\n\n")

	if m.total > 0 {
		b.WriteString(m.progress.ViewAs(float64(m.done) / float64(m.total)))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf("Episodes: %d/%d", m.done, m.total)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	summary := "✨ Sync Complete!"
	if m.stats != nil {
		summary = fmt.Sprintf(
			"✨ Sync Complete!\n\n"+
				"Crawled: %d\n"+
				"Downloaded: %d\n"+
				"Partial: %d\n"+
				"Failed: %d\n"+
				"Duration: %s",
			m.stats.Crawled,
			m.stats.Completed,
			m.stats.Partial,
			m.stats.Failed,
			m.stats.Duration.Round(1e9),
		)
	}
	b.WriteString(boxStyle.Render(summary))

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
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
	case StateInput:
		return "enter: start • v: verbose • esc: quit"
	case StateSyncing:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// startSync wires the full engine and runs it in the background, streaming
// progress events over the channel until the run finishes.
func (m *Model) startSync(bookID string) tea.Cmd {
	cfg := m.cfg
	ctx := m.ctx
	events := m.events

	return func() tea.Msg {
		defer close(events)

		// Structured logs would tear up the alternate screen
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		paths := &model.PathConfig{DownloadsPath: cfg.Download.Path}
		httpClient := httpx.NewClient(cfg.API.Timeout, cfg.API.Retries, cfg.API.RetryDelay)
		api := dramabox.NewClient(httpClient, dramabox.Config{
			BaseURL: cfg.API.BaseURL,
			APIKey:  cfg.API.APIKey,
			Lang:    cfg.API.Lang,
			Paths:   paths,
		}, logger)
		crawler := dramabox.NewCrawler(api, cfg.API.PageSize, logger)
		manager := download.NewManager(httpClient, download.Config{
			EpisodeConcurrency: cfg.Download.EpisodeConcurrency,
			ProbeConcurrency:   cfg.Download.ProbeConcurrency,
			CoverResize:        cfg.Download.ResizeCovers,
			CoverMaxSize:       cfg.Download.CoverMaxSize,
		}, func(ev download.ProgressEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})
		store := history.Open(cfg.History.File)
		engine := syncer.NewReconciler(crawler, api, manager, store, logger)

		if bookID != "" {
			err := engine.SyncDrama(ctx, strings.TrimSpace(bookID))
			return SyncDoneMsg{Err: err}
		}

		stats, err := engine.Run(ctx)
		return SyncDoneMsg{Stats: stats, Err: err}
	}
}

// Run starts the TUI application.
func Run(cfg *config.Config) error {
	p := tea.NewProgram(NewModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
