// Package tui provides a Bubble Tea terminal user interface for modtool.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Starkiller645/modtool/internal/config"
	"github.com/Starkiller645/modtool/internal/download"
	"github.com/Starkiller645/modtool/internal/model"
	"github.com/Starkiller645/modtool/internal/pipeline"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrAborted is returned by Run when the operator quits at the runtime
// check. Callers exit with a non-zero status.
var ErrAborted = errors.New("aborted: java runtime not found")

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7FB069")).
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

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500")).
			Bold(true)
)

// maxTaskRows caps the download list height.
const maxTaskRows = 12

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	ctrl     *pipeline.Controller
	snap     pipeline.Snapshot
	spinner  spinner.Model
	progress progress.Model
	logs     []LogEntry
	verbose  bool

	// cursor indexes the manifest profiles on the selection screen.
	cursor int

	// running is true while a controller operation started by the UI has
	// not reported back.
	running bool
	aborted bool

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

// NewModel creates a TUI model driving ctrl.
func NewModel(ctrl *pipeline.Controller, verbose bool) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB069"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		ctrl:     ctrl,
		snap:     ctrl.Snapshot(),
		spinner:  sp,
		progress: prog,
		verbose:  verbose,
		logs:     make([]LogEntry, 0),
		running:  true,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Aborted reports whether the operator quit at the runtime check.
func (m Model) Aborted() bool {
	return m.aborted
}

// Message types
type (
	// SnapshotMsg carries a controller state change.
	SnapshotMsg struct {
		Snapshot pipeline.Snapshot
	}

	// ProgressMsg carries an operator message from the download engine.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// OpDoneMsg is sent when a controller operation returns.
	OpDoneMsg struct {
		Err error
	}
)

// Init starts the manifest fetch and the snapshot listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForSnapshot(), m.op(func(ctx context.Context) error {
		return m.ctrl.FetchManifest(ctx)
	}))
}

// waitForSnapshot blocks on the controller's event channel.
func (m Model) waitForSnapshot() tea.Cmd {
	events := m.ctrl.Events()
	return func() tea.Msg {
		return SnapshotMsg{Snapshot: <-events}
	}
}

// op runs a controller call in the background.
func (m Model) op(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return OpDoneMsg{Err: fn(ctx)}
	}
}

// start marks the model busy and returns the command for fn.
func (m *Model) start(fn func(ctx context.Context) error) tea.Cmd {
	m.running = true
	return m.op(fn)
}

// follow starts the work the current stage runs without operator input.
func (m *Model) follow() tea.Cmd {
	if m.running || m.snap.Busy {
		return nil
	}

	switch m.snap.Stage {
	case pipeline.StageManifestFetch:
		if m.snap.Err == nil && m.snap.Manifest == nil {
			return m.start(func(ctx context.Context) error {
				return m.ctrl.FetchManifest(ctx)
			})
		}
	case pipeline.StageRuntimeCheck:
		if !m.snap.RuntimeMissing {
			return m.start(func(ctx context.Context) error {
				_, err := m.ctrl.CheckRuntime(ctx)
				return err
			})
		}
	case pipeline.StageLoaderInstall:
		if !m.snap.LoaderFailed {
			return m.start(func(ctx context.Context) error {
				_, err := m.ctrl.InstallLoader(ctx)
				return err
			})
		}
	case pipeline.StageDownload:
		if !m.snap.Downloaded && m.snap.Err == nil {
			return m.start(func(ctx context.Context) error {
				_, err := m.ctrl.Download(ctx)
				return err
			})
		}
	}
	return nil
}

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
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case SnapshotMsg:
		// Messages can queue up behind each other; the controller always
		// has the newest state.
		m.snap = m.ctrl.Snapshot()
		cmds = append(cmds, m.waitForSnapshot())
		if m.snap.Stage == pipeline.StageDownload && len(m.snap.Tasks) > 0 {
			cmds = append(cmds, m.progress.SetPercent(m.batchPercent()))
		}

	case OpDoneMsg:
		m.running = false
		m.snap = m.ctrl.Snapshot()
		if msg.Err != nil && !errors.Is(msg.Err, pipeline.ErrInvalidTransition) {
			m.addLog(LogEntry{Message: msg.Err.Error(), Level: download.LevelError})
		}
		cmds = append(cmds, m.follow())

	case ProgressMsg:
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			return m, nil
		}
		m.addLog(LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) addLog(entry LogEntry) {
	m.logs = append(m.logs, entry)
	// Keep only last 10 logs
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}
	if m.running || m.snap.Busy {
		return m, nil
	}

	switch m.snap.Stage {
	case pipeline.StageManifestFetch:
		if key == "q" || key == "esc" {
			return m, tea.Quit
		}

	case pipeline.StageHome:
		switch key {
		case "enter":
			return m, m.start(func(context.Context) error { return m.ctrl.Start() })
		case "q", "esc":
			return m, tea.Quit
		}

	case pipeline.StageRuntimeCheck:
		switch key {
		case "r":
			return m, m.start(func(ctx context.Context) error {
				_, err := m.ctrl.CheckRuntime(ctx)
				return err
			})
		case "q", "esc":
			m.aborted = true
			return m, tea.Quit
		}

	case pipeline.StageProfileSelect:
		return m.handleProfileKey(key)

	case pipeline.StageLoaderInstall:
		switch key {
		case "r":
			return m, m.start(func(context.Context) error { return m.ctrl.RetryLoader() })
		case "b", "esc":
			return m, m.start(func(context.Context) error { return m.ctrl.BackToProfiles() })
		}

	case pipeline.StageDownload:
		switch key {
		case "enter":
			if m.snap.CanFinish() {
				return m, m.start(func(context.Context) error { return m.ctrl.Finish() })
			}
		case "r":
			if !m.snap.CanFinish() {
				return m, m.start(func(ctx context.Context) error {
					_, err := m.ctrl.Download(ctx)
					return err
				})
			}
		}

	case pipeline.StageComplete:
		switch key {
		case "a", "enter":
			m.logs = nil
			return m, m.start(func(context.Context) error { return m.ctrl.Again() })
		case "q", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m Model) handleProfileKey(key string) (tea.Model, tea.Cmd) {
	if m.snap.Manifest == nil {
		return m, nil
	}
	profiles := m.snap.Manifest.Profiles

	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(profiles)-1 {
			m.cursor++
		}
	case "enter":
		id := profiles[m.cursor].ID
		return m, m.start(func(context.Context) error {
			if err := m.ctrl.SelectProfile(id); err != nil {
				return err
			}
			return m.ctrl.Continue()
		})
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

// batchPercent is the share of completed tasks.
func (m Model) batchPercent() float64 {
	total := len(m.snap.Tasks)
	if total == 0 {
		return 1
	}
	return float64(total-m.snap.Remaining) / float64(total)
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("⛏ modtool"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Minecraft mod installer %s", config.Version)))
	b.WriteString("\n\n")

	switch m.snap.Stage {
	case pipeline.StageManifestFetch:
		b.WriteString(m.viewManifestFetch())
	case pipeline.StageHome:
		b.WriteString(m.viewHome())
	case pipeline.StageRuntimeCheck:
		b.WriteString(m.viewRuntimeCheck())
	case pipeline.StageProfileSelect:
		b.WriteString(m.viewProfiles())
	case pipeline.StageLoaderInstall:
		b.WriteString(m.viewLoaderInstall())
	case pipeline.StageDownload:
		b.WriteString(m.viewDownloading())
	case pipeline.StageComplete:
		b.WriteString(m.viewComplete())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewManifestFetch() string {
	if m.snap.Err != nil {
		return errorStyle.Render("✗ Could not fetch the modpack list:") + "\n\n  " + m.snap.Err.Error() + "\n"
	}
	return m.spinner.View() + " " + subtitleStyle.Render("Fetching modpack list...") + "\n"
}

func (m Model) viewHome() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%d modpacks available.", len(m.snap.Manifest.Profiles))))
	b.WriteString("\n\n")
	b.WriteString("modtool installs the mod loader and mods for a modpack\n")
	b.WriteString("and adds it to the Minecraft launcher.\n")

	return b.String()
}

func (m Model) viewRuntimeCheck() string {
	if !m.snap.RuntimeMissing {
		return m.spinner.View() + " " + subtitleStyle.Render("Checking for Java...") + "\n"
	}

	var b strings.Builder
	b.WriteString(errorStyle.Render("✗ Java was not found."))
	b.WriteString("\n\n")
	b.WriteString("Mod loaders are installed with Java. Install a Java runtime\n")
	b.WriteString("(https://adoptium.net) and make sure `java` is on your PATH,\n")
	b.WriteString("or set java_path in the settings file.\n")
	return b.String()
}

func (m Model) viewProfiles() string {
	var b strings.Builder

	if m.snap.Runtime.Version != "" {
		b.WriteString(successStyle.Render("✓ " + m.snap.Runtime.Version))
		b.WriteString("\n\n")
	}
	b.WriteString(subtitleStyle.Render("Choose a modpack:"))
	b.WriteString("\n\n")

	for i, p := range m.snap.Manifest.Profiles {
		line := fmt.Sprintf("%s (%s %s)", p.Name, p.Loader, p.GameVersion)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("› " + line))
			b.WriteString("\n")
			b.WriteString(dimStyle.Render("    " + p.Summary()))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewLoaderInstall() string {
	profile, _ := m.snap.Profile()
	if !m.snap.LoaderFailed {
		return m.spinner.View() + " " + subtitleStyle.Render(fmt.Sprintf("Installing %s for Minecraft %s...", profile.Loader, profile.GameVersion)) +
			"\n" + dimStyle.Render("The Forge installer opens its own window; finish it there.") + "\n"
	}

	var b strings.Builder
	b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Could not install %s.", profile.Loader)))
	b.WriteString("\n\n")
	if m.snap.Err != nil {
		b.WriteString(fmt.Sprintf("  %s\n\n", m.snap.Err.Error()))
	}
	b.WriteString(fmt.Sprintf("Retry, or install %s for Minecraft %s by hand and go back.\n", profile.Loader, profile.GameVersion))
	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if m.snap.Loader.Label != "" {
		b.WriteString(successStyle.Render("✓ " + m.snap.Loader.Label))
		b.WriteString("\n\n")
	}

	total := len(m.snap.Tasks)
	b.WriteString(m.progress.ViewAs(m.batchPercent()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Mods: %d/%d", total-m.snap.Remaining, total)))
	if failed := m.snap.Failed(); failed > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf(" | %d failed", failed)))
	}
	b.WriteString("\n\n")

	tasks := m.snap.SortedTasks()
	for i, t := range tasks {
		if i == maxTaskRows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  … and %d more", len(tasks)-maxTaskRows)))
			b.WriteString("\n")
			break
		}
		b.WriteString(renderTask(t))
		b.WriteString("\n")
	}

	if m.snap.Registered {
		b.WriteString("\n")
		if m.snap.RegistrationErr != nil {
			b.WriteString(warningStyle.Render("! Launcher profile not added: " + m.snap.RegistrationErr.Error()))
		} else {
			b.WriteString(dimStyle.Render("Launcher profile ready."))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func renderTask(t model.DownloadTask) string {
	name := t.Mod.Name
	if name == "" {
		name = t.FileName
	}

	switch t.State {
	case model.TaskComplete:
		return successStyle.Render("  ✓ " + name)
	case model.TaskFailed:
		return errorStyle.Render(fmt.Sprintf("  ✗ %s: %v", name, t.Err))
	case model.TaskInProgress:
		if p := t.Percent(); p >= 0 {
			return infoStyle.Render(fmt.Sprintf("  ↓ %s %3.0f%%", name, p))
		}
		return infoStyle.Render(fmt.Sprintf("  ↓ %s %.2f MB", name, float64(t.BytesDownloaded)/1024/1024))
	default:
		return dimStyle.Render("  · " + name)
	}
}

func (m Model) viewComplete() string {
	profile, _ := m.snap.Profile()

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Installation Complete!\n\n"+
			"Modpack: %s\n"+
			"Loader: %s\n"+
			"Mods: %d\n\n"+
			"Start the Minecraft launcher and pick the %q profile.",
		profile.Name,
		m.snap.Loader.Label,
		len(m.snap.Tasks),
		profile.Name,
	))
	return box
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
	if m.running || m.snap.Busy {
		return "ctrl+c: quit"
	}

	switch m.snap.Stage {
	case pipeline.StageManifestFetch:
		return "q: quit"
	case pipeline.StageHome:
		return "enter: start • q: quit"
	case pipeline.StageRuntimeCheck:
		return "r: check again • q: exit"
	case pipeline.StageProfileSelect:
		return "↑/↓: choose • enter: install • q: quit"
	case pipeline.StageLoaderInstall:
		return "r: retry • b: back to modpacks"
	case pipeline.StageDownload:
		if m.snap.CanFinish() {
			return "enter: finish"
		}
		return "r: retry downloads • ctrl+c: quit"
	case pipeline.StageComplete:
		return "a: install another • q: quit"
	}
	return ""
}

// Run starts the TUI application. It returns ErrAborted when the
// operator quit because no Java runtime was found.
func Run(settings *config.Settings, logger *slog.Logger, verbose bool) error {
	var p *tea.Program
	deps, _, err := pipeline.Wire(settings, logger, func(event download.ProgressEvent) {
		if p != nil {
			p.Send(ProgressMsg{Event: event})
		}
	})
	if err != nil {
		return err
	}

	p = tea.NewProgram(NewModel(pipeline.New(deps), verbose), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.Aborted() {
		return ErrAborted
	}
	return nil
}
