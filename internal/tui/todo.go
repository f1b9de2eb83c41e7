package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hibidash/internal/query"
	"github.com/sadopc/hibidash/internal/store"
)

type todosDataMsg struct {
	items []store.TodoItem
	err   error
}

type todoWidget struct {
	hook   *query.Todos
	items  []store.TodoItem
	cursor int
	err    error
	loaded bool

	form     *huh.Form
	title    *string
	priority *store.Priority
}

func newTodoWidget(h *query.Todos) todoWidget {
	title, p := "", store.PriorityMedium
	return todoWidget{hook: h, title: &title, priority: &p}
}

func (w todoWidget) id() string { return store.WidgetTodo }
func (w todoWidget) reads() []query.Key { return []query.Key{w.hook.Key()} }
func (w todoWidget) formActive() bool { return w.form != nil }

func (w todoWidget) refresh() tea.Cmd {
	return func() tea.Msg {
		items, err := w.hook.List()
		return todosDataMsg{items: items, err: err}
	}
}

func (w todoWidget) selected() (store.TodoItem, bool) {
	if w.cursor < 0 || w.cursor >= len(w.items) {
		return store.TodoItem{}, false
	}
	return w.items[w.cursor], true
}

func (w todoWidget) update(msg tea.Msg) (widget, tea.Cmd) {
	if w.form != nil {
		form, cmd, outcome := stepForm(w.form, msg)
		w.form = form
		if outcome != formDone {
			return w, cmd
		}
		w.form = nil
		return w, w.submit()
	}

	switch msg := msg.(type) {
	case todosDataMsg:
		w.loaded = true
		w.err = msg.err
		if msg.err == nil {
			w.items = msg.items
			w.cursor = clampCursor(w.cursor, len(w.items))
		}
		return w, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if w.cursor > 0 {
				w.cursor--
			}
		case key.Matches(msg, keys.Down):
			if w.cursor < len(w.items)-1 {
				w.cursor++
			}
		case key.Matches(msg, keys.New):
			*w.title = ""
			*w.priority = store.PriorityMedium
			w.form = newForm(huh.NewGroup(
				huh.NewInput().Title("Todo").Value(w.title),
				huh.NewSelect[store.Priority]().
					Title("Priority").
					Options(
						huh.NewOption("Low", store.PriorityLow),
						huh.NewOption("Medium", store.PriorityMedium),
						huh.NewOption("High", store.PriorityHigh),
					).
					Value(w.priority),
			))
			return w, w.form.Init()
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			t, ok := w.selected()
			if !ok {
				return w, nil
			}
			return w, mutate("", func() error {
				return w.hook.Toggle(t.ID, !t.Completed)
			}, w.hook.Key())
		case key.Matches(msg, keys.Priority):
			t, ok := w.selected()
			if !ok {
				return w, nil
			}
			next := nextPriority(t.Priority)
			return w, mutate("Priority set to "+string(next), func() error {
				return w.hook.Update(t.ID, store.TodoPatch{Priority: &next})
			}, w.hook.Key())
		case key.Matches(msg, keys.Delete):
			t, ok := w.selected()
			if !ok {
				return w, nil
			}
			return w, mutate("Todo deleted", func() error {
				return w.hook.Delete(t.ID)
			}, w.hook.Key())
		}
	}
	return w, nil
}

func (w todoWidget) submit() tea.Cmd {
	title := strings.TrimSpace(*w.title)
	if title == "" {
		return notify(levelError, "Please enter a todo")
	}
	p := *w.priority
	return mutate("Todo added", func() error {
		return w.hook.Add(title, p)
	}, w.hook.Key())
}

func nextPriority(p store.Priority) store.Priority {
	for i, pp := range store.Priorities {
		if pp == p {
			return store.Priorities[(i+1)%len(store.Priorities)]
		}
	}
	return store.PriorityMedium
}

func priorityStyle(p store.Priority) lipgloss.Style {
	switch p {
	case store.PriorityHigh:
		return errorStyle
	case store.PriorityMedium:
		return warningStyle
	}
	return successStyle
}

func (w todoWidget) view(width int, focused bool) string {
	done := 0
	for _, t := range w.items {
		if t.Completed {
			done++
		}
	}
	header := titleStyle.Render("Todo List")
	if len(w.items) > 0 {
		header += mutedStyle.Render(fmt.Sprintf(" %d/%d done", done, len(w.items)))
	}
	rows := []string{header}

	if w.form != nil {
		rows = append(rows, "", w.form.View())
		return strings.Join(rows, "\n")
	}

	switch {
	case w.err != nil:
		rows = append(rows, errorStyle.Render("Failed to load todos"))
	case !w.loaded:
		rows = append(rows, mutedStyle.Render("Loading..."))
	case len(w.items) == 0:
		rows = append(rows, mutedStyle.Render("Nothing to do. Press n to add a todo."))
	}

	for i, t := range w.items {
		cursor := "  "
		if focused && i == w.cursor {
			cursor = "> "
		}
		check := "[ ]"
		style := normalItemStyle
		if t.Completed {
			check = "[x]"
			style = doneItemStyle
		}
		if focused && i == w.cursor && !t.Completed {
			style = selectedItemStyle
		}
		dot := priorityStyle(t.Priority).Render("●")
		rows = append(rows, cursor+check+" "+dot+" "+style.Render(truncate(t.Title, max(width-12, 8))))
	}

	if focused {
		rows = append(rows, "", mutedStyle.Render("n: add  space: done  p: priority  d: delete"))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(rows, "\n"))
}
