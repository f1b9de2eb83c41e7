package tui

import (
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hibidash/internal/export"
	"github.com/sadopc/hibidash/internal/query"
	"github.com/sadopc/hibidash/internal/store"
)

// Options wires the app to its collaborators.
type Options struct {
	Store  *store.Store
	Auth   Authenticator
	Client *query.Client
	// User is the user restored from a saved session, or nil.
	User      *store.User
	Logger    *slog.Logger
	ExportDir string
	// Changes fires when another process writes the database. May be nil.
	Changes <-chan struct{}
}

// App is the root Bubble Tea model.
type App struct {
	opts   Options
	logger *slog.Logger
	width  int
	height int

	sess          *session
	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	auth      authModel
	dashboard dashboardModel
	reports   reportsModel
	settings  settingsModel

	help   help.Model
	status statusMsg
}

func NewApp(opts Options) App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Client == nil {
		opts.Client = query.NewClient(opts.Logger)
	}
	h := help.New()
	h.ShowAll = false

	a := App{
		opts:       opts,
		logger:     opts.Logger,
		activeView: viewDashboard,
		auth:       newAuthModel(opts.Auth),
		help:       h,
	}
	if opts.User != nil {
		a = a.startSession(opts.User)
	}
	return a
}

func (a App) startSession(u *store.User) App {
	a.sess = newSession(a.opts.Store, a.opts.Client, u)
	a.activeView = viewDashboard
	a.dashboard = newDashboardModel(a.sess)
	a.reports = newReportsModel(a.sess)
	a.settings = newSettingsModel(a.sess)
	a.resize()
	return a
}

func (a App) sessionCmds() tea.Cmd {
	return tea.Batch(a.dashboard.Init(), a.reports.refresh(), a.settings.refresh())
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), waitForChange(a.opts.Changes)}
	if a.sess != nil {
		cmds = append(cmds, a.sessionCmds())
	} else {
		cmds = append(cmds, a.auth.Init())
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChange blocks until the watcher reports a write. A closed channel
// ends the loop.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return dbChangedMsg{}
	}
}

func (a *App) resize() {
	contentHeight := a.height - 4 // header + footer
	a.auth.setSize(a.width, a.height-1)
	if a.sess != nil {
		a.dashboard.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.resize()
		if a.sess != nil {
			a.reports.buildChart()
		}
		return a, nil

	case tickMsg:
		if a.sess == nil {
			return a, tickCmd()
		}
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case statusMsg:
		a.status = msg
		if a.sess == nil {
			var cmd tea.Cmd
			a.auth, cmd = a.auth.update(msg)
			return a, cmd
		}
		return a, nil

	case signedInMsg:
		a = a.startSession(msg.user)
		a.status = statusMsg{level: levelSuccess, text: "Welcome, " + msg.user.Email}
		a.logger.Info("signed in", "user_id", msg.user.ID)
		return a, a.sessionCmds()

	case signedOutMsg:
		a.sess = nil
		a.exportPicking = false
		a.auth = newAuthModel(a.opts.Auth)
		a.resize()
		a.status = statusMsg{level: levelInfo, text: "Signed out"}
		return a, a.auth.Init()

	case dbChangedMsg:
		cmds := []tea.Cmd{waitForChange(a.opts.Changes)}
		if a.sess != nil {
			a.logger.Debug("database changed on disk", "user_id", a.sess.user.ID)
			a.opts.Client.InvalidateUser(a.sess.user.ID)
			var cmd tea.Cmd
			a.dashboard, cmd = a.dashboard.update(msg)
			cmds = append(cmds, cmd, a.reports.refresh(), a.settings.refresh())
		}
		return a, tea.Batch(cmds...)

	case mutationDoneMsg:
		if msg.err != nil {
			a.logger.Error("write failed", "err", msg.err)
			a.status = statusMsg{level: levelError, text: msg.err.Error()}
		} else if msg.text != "" {
			a.status = statusMsg{level: levelSuccess, text: msg.text}
		}
		if a.sess == nil {
			return a, nil
		}
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		cmds = append(cmds, cmd)
		a.reports, cmd = a.reports.update(msg)
		cmds = append(cmds, cmd)
		if msg.err == nil && slices.Contains(msg.keys, a.sess.settings.Key()) {
			cmds = append(cmds, a.settings.refresh())
		}
		return a, tea.Batch(cmds...)

	case exportDoneMsg:
		a.status = statusMsg{level: levelSuccess, text: "Exported to " + msg.path}
		a.exportPicking = false
		return a, nil

	case tea.KeyMsg:
		if a.sess == nil {
			if msg.String() == "ctrl+c" {
				return a, tea.Quit
			}
			var cmd tea.Cmd
			a.auth, cmd = a.auth.update(msg)
			return a, cmd
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Logout):
			return a, a.signOut()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewReports
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSettings
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}
		return a.updateActiveView(msg)
	}

	if a.sess == nil {
		var cmd tea.Cmd
		a.auth, cmd = a.auth.update(msg)
		return a, cmd
	}

	// Data and form-internal messages reach every page so a result that
	// lands after a tab switch is not lost.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.dashboard, cmd = a.dashboard.update(msg)
	cmds = append(cmds, cmd)
	a.reports, cmd = a.reports.update(msg)
	cmds = append(cmds, cmd)
	a.settings, cmd = a.settings.update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a App) signOut() tea.Cmd {
	svc, client := a.opts.Auth, a.opts.Client
	return func() tea.Msg {
		if err := svc.SignOut(); err != nil {
			return statusMsg{level: levelError, text: err.Error()}
		}
		client.Clear()
		return signedOutMsg{}
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.formActive()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.refreshAll()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if a.sess == nil {
		return lipgloss.JoinVertical(lipgloss.Left, a.auth.view(), a.renderStatus())
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("hibidash")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderStatus() string {
	if a.status.text == "" {
		return ""
	}
	return levelStyle(a.status.level).Render(" " + levelIcon(a.status.level) + " " + a.status.text)
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))
	right := a.renderStatus()

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f.Label()))
	}
	rows = append(rows, "", mutedStyle.Render("  files are written to "+a.opts.ExportDir))
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		f := export.Formats[a.exportCursor]
		return a, tea.Batch(notify(levelLoading, "Exporting "+f.Label()+"..."), a.doExport(f))
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	db, user, dir, logger := a.opts.Store, a.sess.user, a.opts.ExportDir, a.logger
	return func() tea.Msg {
		path, err := export.Write(db, user, f, dir)
		if err != nil {
			logger.Error("export failed", "format", string(f), "err", err)
			return statusMsg{level: levelError, text: "Export failed: " + err.Error()}
		}
		logger.Info("exported", "format", string(f), "path", path)
		return exportDoneMsg{path: path}
	}
}
