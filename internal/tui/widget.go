package tui

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sadopc/hibidash/internal/query"
	"github.com/sadopc/hibidash/internal/store"
)

// widget is one dashboard panel. Implementations are values; anything that
// must survive copies (form bindings) lives behind pointers.
type widget interface {
	id() string
	// reads lists the cache keys the widget renders from.
	reads() []query.Key
	refresh() tea.Cmd
	update(msg tea.Msg) (widget, tea.Cmd)
	view(width int, focused bool) string
	formActive() bool
}

// session bundles the signed-in user's hooks.
type session struct {
	user     *store.User
	client   *query.Client
	anime    *query.Anime
	todos    *query.Todos
	spending *query.Spending
	health   *query.Health
	settings *query.Settings
	pomodoro *query.Pomodoro
}

func newSession(db *store.Store, c *query.Client, u *store.User) *session {
	return &session{
		user:     u,
		client:   c,
		anime:    query.NewAnime(c, db, u.ID),
		todos:    query.NewTodos(c, db, u.ID),
		spending: query.NewSpending(c, db, u.ID),
		health:   query.NewHealth(c, db, u.ID),
		settings: query.NewSettings(c, db, u.ID),
		pomodoro: query.NewPomodoro(c, db, u.ID),
	}
}

type formOutcome int

const (
	formRunning formOutcome = iota
	formDone
	formCancelled
)

// stepForm feeds msg to an embedded huh form. esc cancels.
func stepForm(f *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd, formOutcome) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return nil, nil, formCancelled
	}
	m, cmd := f.Update(msg)
	if ff, ok := m.(*huh.Form); ok {
		f = ff
	}
	switch f.State {
	case huh.StateCompleted:
		return f, nil, formDone
	case huh.StateAborted:
		return nil, nil, formCancelled
	}
	return f, cmd, formRunning
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithShowHelp(false).WithShowErrors(true)
}

func readsKey(w widget, key query.Key) bool {
	return slices.Contains(w.reads(), key)
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	return max(cursor, 0)
}
