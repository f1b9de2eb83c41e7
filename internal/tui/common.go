package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/hibidash/internal/query"
	"github.com/sadopc/hibidash/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewReports
	viewSettings
)

var viewNames = []string{"Dashboard", "Reports", "Settings"}

type notifyLevel int

const (
	levelInfo notifyLevel = iota
	levelSuccess
	levelError
	levelLoading
)

// --- Messages ---

type statusMsg struct {
	level notifyLevel
	text  string
}

type tickMsg time.Time

// mutationDoneMsg reports a finished write. Widgets reading key refetch.
type mutationDoneMsg struct {
	keys []query.Key
	text string
	err  error
}

type signedInMsg struct {
	user *store.User
}

type signedOutMsg struct{}

type settingsDataMsg struct {
	settings *store.UserSettings
	err      error
}

type dbChangedMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Commands ---

func notify(level notifyLevel, text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{level: level, text: text} }
}

func notifyErr(err error) tea.Cmd {
	return notify(levelError, err.Error())
}

// mutate runs fn off the UI goroutine and reports the outcome. Validation
// happens before this is called; fn only performs the write.
func mutate(success string, fn func() error, keys ...query.Key) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return mutationDoneMsg{keys: keys, err: err}
		}
		return mutationDoneMsg{keys: keys, text: success}
	}
}

// --- Helpers ---

func formatPomodoroTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

func greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	}
	return "Good evening"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func progressBar(value, total float64, width int) string {
	if width < 1 {
		return ""
	}
	ratio := 0.0
	if total > 0 {
		ratio = value / total
	}
	ratio = max(0, min(ratio, 1))
	filled := int(ratio * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
