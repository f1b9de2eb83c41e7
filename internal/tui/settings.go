package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hibidash/internal/store"
)

var widgetLabels = map[string]string{
	store.WidgetAnime:       "Anime Tracker",
	store.WidgetInspiration: "Daily Inspiration",
	store.WidgetSpending:    "Spending Tracker",
	store.WidgetTodo:        "Todo List",
	store.WidgetHealth:      "Health Tracker",
	store.WidgetMiniGames:   "Mini Games",
}

type settingsModel struct {
	sess   *session
	width  int
	height int

	settings   *store.UserSettings
	err        error
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	enabled *[]string
	minutes *int
	layout  *string
}

func newSettingsModel(sess *session) settingsModel {
	var enabled []string
	minutes, layout := pomodoroPresets[0], ""
	return settingsModel{
		sess:    sess,
		enabled: &enabled,
		minutes: &minutes,
		layout:  &layout,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		st, err := s.sess.settings.Get()
		return settingsDataMsg{settings: st, err: err}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.err = msg.err
		if msg.err == nil {
			s.settings = msg.settings
		}
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			if s.settings == nil {
				return s, nil
			}
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.enabled = nil
	for _, id := range defaultWidgetOrder {
		if s.settings.Enabled(id) {
			*s.enabled = append(*s.enabled, id)
		}
	}
	*s.minutes = s.settings.PomodoroMinutes
	*s.layout = strings.Join(layoutOrder(s.settings.Layout), ", ")

	options := make([]huh.Option[string], 0, len(defaultWidgetOrder))
	for _, id := range defaultWidgetOrder {
		options = append(options, huh.NewOption(widgetLabels[id], id))
	}
	presets := make([]huh.Option[int], 0, len(pomodoroPresets))
	for _, m := range pomodoroPresets {
		presets = append(presets, huh.NewOption(fmt.Sprintf("%d minutes", m), m))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Widgets").
				Options(options...).
				Value(s.enabled),
		).Title("Dashboard"),
		huh.NewGroup(
			huh.NewInput().
				Title("Layout order").
				Description("Comma-separated widget ids").
				Validate(func(v string) error {
					_, err := parseLayout(v)
					return err
				}).
				Value(s.layout),
			huh.NewSelect[int]().
				Title("Pomodoro length").
				Options(presets...).
				Value(s.minutes),
		).Title("Layout"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

// parseLayout splits a comma-separated list of widget ids.
func parseLayout(v string) ([]string, error) {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, ok := widgetLabels[id]; !ok {
			return nil, fmt.Errorf("unknown widget %q", id)
		}
		if slices.Contains(out, id) {
			return nil, fmt.Errorf("widget %q listed twice", id)
		}
		out = append(out, id)
	}
	return out, nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	form, cmd, outcome := stepForm(s.form, msg)
	switch outcome {
	case formCancelled:
		s.formActive = false
		s.form = nil
		return s, nil
	case formRunning:
		s.form = form
		return s, cmd
	}
	s.formActive = false
	s.form = nil
	return s, s.save()
}

func (s settingsModel) patch() (store.SettingsPatch, error) {
	layout, err := parseLayout(*s.layout)
	if err != nil {
		return store.SettingsPatch{}, err
	}
	on := func(id string) *bool {
		v := slices.Contains(*s.enabled, id)
		return &v
	}
	minutes := *s.minutes
	return store.SettingsPatch{
		AnimeTrackerEnabled:     on(store.WidgetAnime),
		DailyInspirationEnabled: on(store.WidgetInspiration),
		SpendingTrackerEnabled:  on(store.WidgetSpending),
		TodoListEnabled:         on(store.WidgetTodo),
		HealthTrackerEnabled:    on(store.WidgetHealth),
		MiniGamesEnabled:        on(store.WidgetMiniGames),
		Layout:                  layout,
		PomodoroMinutes:         &minutes,
	}, nil
}

func (s settingsModel) save() tea.Cmd {
	p, err := s.patch()
	if err != nil {
		return notifyErr(err)
	}
	return mutate("Settings saved", func() error {
		return s.sess.settings.Update(p)
	}, s.sess.settings.Key())
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	switch {
	case s.err != nil:
		rows = append(rows, errorStyle.Render("Failed to load settings: "+s.err.Error()))
	case s.settings == nil:
		rows = append(rows, mutedStyle.Render("Loading..."))
	default:
		for _, id := range defaultWidgetOrder {
			label := lipgloss.NewStyle().Width(24).Render(widgetLabels[id])
			value := mutedStyle.Render("off")
			if s.settings.Enabled(id) {
				value = successStyle.Render("on")
			}
			rows = append(rows, "  "+label+" "+value)
		}
		rows = append(rows, "",
			"  "+lipgloss.NewStyle().Width(24).Render("Pomodoro length")+" "+
				highlightStyle.Render(fmt.Sprintf("%d min", s.settings.PomodoroMinutes)),
			"  "+lipgloss.NewStyle().Width(24).Render("Signed in as")+" "+
				highlightStyle.Render(s.sess.user.Email),
		)
	}

	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings  O: log out"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
