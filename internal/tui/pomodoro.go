package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/hibidash/internal/query"
	"github.com/sadopc/hibidash/internal/store"
)

type gameMode int

const (
	modePomodoro gameMode = iota
	modeSudoku
)

const pomodoroDoneText = "🎉 Pomodoro completed! Time for a break!"

type pomodoroDataMsg struct {
	stats query.PomodoroStats
	err   error
}

type miniGamesWidget struct {
	hook     *query.Pomodoro
	settings *query.Settings
	mode     gameMode
	timer    countdown
	stats    query.PomodoroStats
	lastDone time.Time
	err      error
}

func newMiniGamesWidget(h *query.Pomodoro, s *query.Settings, minutes int) miniGamesWidget {
	if minutes <= 0 {
		minutes = pomodoroPresets[0]
	}
	return miniGamesWidget{
		hook:     h,
		settings: s,
		timer:    newCountdown(time.Duration(minutes) * time.Minute),
	}
}

func (w miniGamesWidget) id() string { return store.WidgetMiniGames }
func (w miniGamesWidget) reads() []query.Key { return []query.Key{w.hook.Key()} }
func (w miniGamesWidget) formActive() bool { return false }

func (w miniGamesWidget) refresh() tea.Cmd {
	return func() tea.Msg {
		stats, err := w.hook.Today()
		return pomodoroDataMsg{stats: stats, err: err}
	}
}

func (w miniGamesWidget) update(msg tea.Msg) (widget, tea.Cmd) {
	switch msg := msg.(type) {
	case pomodoroDataMsg:
		w.err = msg.err
		if msg.err == nil {
			w.stats = msg.stats
		}
		return w, nil

	case tickMsg:
		if !w.timer.tick() {
			return w, nil
		}
		w.lastDone = time.Time(msg)
		d := w.timer.duration
		return w, mutate(pomodoroDoneText, func() error {
			return w.hook.Record(d)
		}, w.hook.Key())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Mode):
			if w.mode == modePomodoro {
				w.mode = modeSudoku
			} else {
				w.mode = modePomodoro
			}
			return w, nil
		}
		if w.mode != modePomodoro {
			return w, nil
		}
		switch {
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			w.timer.toggle()
		case key.Matches(msg, keys.Reset):
			w.timer.reset()
		case key.Matches(msg, keys.Preset):
			minutes := nextPreset(w.timer.minutes())
			w.timer.setPreset(minutes)
			return w, mutate("", func() error {
				return w.settings.Update(store.SettingsPatch{PomodoroMinutes: &minutes})
			}, w.settings.Key())
		}
	}
	return w, nil
}

func (w miniGamesWidget) view(width int, focused bool) string {
	tabs := []string{"Pomodoro", "Sudoku"}
	for i, t := range tabs {
		if gameMode(i) == w.mode {
			tabs[i] = activeTabStyle.Render(t)
		} else {
			tabs[i] = inactiveTabStyle.Render(t)
		}
	}
	rows := []string{
		titleStyle.Render("Mini Games"),
		lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...),
		"",
	}

	if w.mode == modeSudoku {
		rows = append(rows,
			highlightStyle.Render("Sudoku game coming soon!"),
			mutedStyle.Render("Challenge yourself with daily puzzles"),
		)
		if focused {
			rows = append(rows, "", mutedStyle.Render("m: switch game"))
		}
		return lipgloss.NewStyle().MaxWidth(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	clock := timerStyle
	state := "Paused"
	switch {
	case w.timer.running:
		clock = timerRunningStyle
		state = "Focusing"
	case w.timer.remaining == 0:
		state = "Done"
	case w.timer.remaining == w.timer.duration:
		state = "Ready"
	}
	rows = append(rows,
		clock.Width(max(width-2, 10)).Render(formatPomodoroTime(w.timer.remaining)),
		lipgloss.NewStyle().Width(max(width-2, 10)).Align(lipgloss.Center).Render(
			mutedStyle.Render(fmt.Sprintf("%s · %d min", state, w.timer.minutes())),
		),
		"",
	)

	stats := fmt.Sprintf("Today: %d done, %s focused", w.stats.Count, humanize.Comma(int64(w.stats.Total/time.Minute))+" min")
	if w.err != nil {
		stats = errorStyle.Render("Failed to load today's sessions")
	}
	rows = append(rows, stats)
	if !w.lastDone.IsZero() {
		rows = append(rows, mutedStyle.Render("Last finished "+humanize.Time(w.lastDone)))
	}

	if focused {
		rows = append(rows, "", mutedStyle.Render("space: start/pause  x: reset  p: preset  m: switch game"))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
