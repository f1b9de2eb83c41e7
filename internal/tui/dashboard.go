package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hibidash/internal/store"
)

// defaultWidgetOrder is used for widgets the saved layout does not mention.
var defaultWidgetOrder = []string{
	store.WidgetAnime,
	store.WidgetInspiration,
	store.WidgetSpending,
	store.WidgetTodo,
	store.WidgetHealth,
	store.WidgetMiniGames,
}

const dashboardColumns = 2

type dashboardModel struct {
	sess     *session
	settings *store.UserSettings
	widgets  []widget
	focus    int
	err      error
	width    int
	height   int
	now      func() time.Time
	// day is the UTC date of the last tick; day-scoped reads refetch when
	// it changes.
	day string
}

func newDashboardModel(sess *session) dashboardModel {
	return dashboardModel{sess: sess, now: time.Now}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadSettings()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) loadSettings() tea.Cmd {
	return func() tea.Msg {
		s, err := d.sess.settings.Get()
		return settingsDataMsg{settings: s, err: err}
	}
}

// layoutOrder returns every widget id: those named in layout first, then the
// rest in default order. Unknown or repeated ids are skipped.
func layoutOrder(layout []string) []string {
	ids := make([]string, 0, len(defaultWidgetOrder))
	for _, id := range append(slices.Clone(layout), defaultWidgetOrder...) {
		if slices.Contains(defaultWidgetOrder, id) && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// widgetOrder returns the enabled widget ids in layout order.
func widgetOrder(s *store.UserSettings) []string {
	var ids []string
	for _, id := range layoutOrder(s.Layout) {
		if s.Enabled(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (d dashboardModel) build(id string) widget {
	switch id {
	case store.WidgetAnime:
		return newAnimeWidget(d.sess.anime)
	case store.WidgetInspiration:
		return newInspirationWidget()
	case store.WidgetSpending:
		return newSpendingWidget(d.sess.spending)
	case store.WidgetTodo:
		return newTodoWidget(d.sess.todos)
	case store.WidgetHealth:
		return newHealthWidget(d.sess.health)
	case store.WidgetMiniGames:
		return newMiniGamesWidget(d.sess.pomodoro, d.sess.settings, d.settings.PomodoroMinutes)
	}
	return nil
}

// compose rebuilds the widget list from settings. Widgets that stay enabled
// keep their state; new ones are refreshed.
func (d dashboardModel) compose() (dashboardModel, tea.Cmd) {
	existing := make(map[string]widget, len(d.widgets))
	for _, w := range d.widgets {
		existing[w.id()] = w
	}
	var focusedID string
	if d.focus < len(d.widgets) {
		focusedID = d.widgets[d.focus].id()
	}

	var cmds []tea.Cmd
	widgets := make([]widget, 0, len(defaultWidgetOrder))
	for _, id := range widgetOrder(d.settings) {
		if w, ok := existing[id]; ok {
			widgets = append(widgets, w)
			continue
		}
		w := d.build(id)
		if w == nil {
			continue
		}
		widgets = append(widgets, w)
		cmds = append(cmds, w.refresh())
	}
	d.widgets = widgets

	d.focus = 0
	for i, w := range widgets {
		if w.id() == focusedID {
			d.focus = i
		}
	}
	return d, tea.Batch(cmds...)
}

func (d dashboardModel) refreshAll() tea.Cmd {
	cmds := []tea.Cmd{d.loadSettings()}
	for _, w := range d.widgets {
		cmds = append(cmds, w.refresh())
	}
	return tea.Batch(cmds...)
}

func (d dashboardModel) formActive() bool {
	return d.focus < len(d.widgets) && d.widgets[d.focus].formActive()
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsDataMsg:
		d.err = msg.err
		if msg.err != nil {
			return d, nil
		}
		d.settings = msg.settings
		return d.compose()

	case mutationDoneMsg:
		// A failed multi-step write may still have landed some of its
		// steps, so matching widgets refetch either way. Unchanged keys
		// are served from the cache.
		var cmds []tea.Cmd
		for _, k := range msg.keys {
			if k == d.sess.settings.Key() {
				cmds = append(cmds, d.loadSettings())
			}
		}
		for _, w := range d.widgets {
			for _, k := range msg.keys {
				if readsKey(w, k) {
					cmds = append(cmds, w.refresh())
					break
				}
			}
		}
		return d, tea.Batch(cmds...)

	case dbChangedMsg:
		return d, d.refreshAll()

	case tea.KeyMsg:
		if len(d.widgets) == 0 {
			return d, nil
		}
		if d.formActive() {
			return d.updateFocused(msg)
		}
		switch {
		case key.Matches(msg, keys.Left):
			d.focus = (d.focus - 1 + len(d.widgets)) % len(d.widgets)
			return d, nil
		case key.Matches(msg, keys.Right):
			d.focus = (d.focus + 1) % len(d.widgets)
			return d, nil
		case key.Matches(msg, keys.Refresh):
			w := d.widgets[d.focus]
			if len(w.reads()) > 0 {
				for _, k := range w.reads() {
					d.sess.client.Invalidate(k)
				}
				return d, w.refresh()
			}
		}
		return d.updateFocused(msg)
	}

	// Data, tick and form-internal messages go to every widget; each one
	// ignores what is not addressed to it.
	var cmds []tea.Cmd
	if t, ok := msg.(tickMsg); ok {
		day := time.Time(t).UTC().Format(store.DateLayout)
		if d.day != "" && day != d.day && len(d.widgets) > 0 {
			cmds = append(cmds, d.refreshAll())
		}
		d.day = day
	}
	d.widgets = slices.Clone(d.widgets)
	for i, w := range d.widgets {
		nw, cmd := w.update(msg)
		d.widgets[i] = nw
		cmds = append(cmds, cmd)
	}
	return d, tea.Batch(cmds...)
}

func (d dashboardModel) updateFocused(msg tea.Msg) (dashboardModel, tea.Cmd) {
	w, cmd := d.widgets[d.focus].update(msg)
	d.widgets = slices.Clone(d.widgets)
	d.widgets[d.focus] = w
	return d, cmd
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	name := d.sess.user.Email
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	now := d.now()
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("%s, %s!", greeting(now), name)),
		mutedStyle.Render(now.Format("Monday, January 2, 2006")),
	)

	switch {
	case d.err != nil:
		return lipgloss.JoinVertical(lipgloss.Left, header, "", errorStyle.Render("Failed to load settings: "+d.err.Error()))
	case d.settings == nil:
		return lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("Loading..."))
	case len(d.widgets) == 0:
		return lipgloss.JoinVertical(lipgloss.Left, header, "",
			mutedStyle.Render("All widgets are turned off. Press 3 to choose some in Settings."))
	}

	colWidth := d.width/dashboardColumns - 1
	inner := colWidth - 4

	var rows []string
	for start := 0; start < len(d.widgets); start += dashboardColumns {
		var cells []string
		for i := start; i < len(d.widgets) && i < start+dashboardColumns; i++ {
			focused := i == d.focus
			style := panelStyle
			if focused {
				style = activePanelStyle
			}
			cells = append(cells, style.Width(colWidth-2).Render(d.widgets[i].view(inner, focused)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, append([]string{header, ""}, rows...)...)
}
