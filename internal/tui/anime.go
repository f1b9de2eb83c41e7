package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hibidash/internal/query"
	"github.com/sadopc/hibidash/internal/store"
)

var animeStatusLabels = map[store.AnimeStatus]string{
	store.AnimePlanToWatch: "Plan to Watch",
	store.AnimeWatching:    "Watching",
	store.AnimeCompleted:   "Completed",
}

type animeDataMsg struct {
	entries []store.AnimeEntry
	err     error
}

type animeWidget struct {
	hook    *query.Anime
	entries []store.AnimeEntry
	cursor  int
	err     error
	loaded  bool

	form     *huh.Form
	formKind string // "add", "rate"
	title    *string
	rating   *string
}

func newAnimeWidget(h *query.Anime) animeWidget {
	title, rating := "", ""
	return animeWidget{hook: h, title: &title, rating: &rating}
}

func (w animeWidget) id() string { return store.WidgetAnime }
func (w animeWidget) reads() []query.Key { return []query.Key{w.hook.Key()} }
func (w animeWidget) formActive() bool { return w.form != nil }

func (w animeWidget) refresh() tea.Cmd {
	return func() tea.Msg {
		entries, err := w.hook.List()
		return animeDataMsg{entries: entries, err: err}
	}
}

func (w animeWidget) selected() (store.AnimeEntry, bool) {
	if w.cursor < 0 || w.cursor >= len(w.entries) {
		return store.AnimeEntry{}, false
	}
	return w.entries[w.cursor], true
}

func (w animeWidget) update(msg tea.Msg) (widget, tea.Cmd) {
	if w.form != nil {
		return w.updateForm(msg)
	}

	switch msg := msg.(type) {
	case animeDataMsg:
		w.loaded = true
		w.err = msg.err
		if msg.err == nil {
			w.entries = msg.entries
			w.cursor = clampCursor(w.cursor, len(w.entries))
		}
		return w, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if w.cursor > 0 {
				w.cursor--
			}
		case key.Matches(msg, keys.Down):
			if w.cursor < len(w.entries)-1 {
				w.cursor++
			}
		case key.Matches(msg, keys.New):
			return w.showAddForm()
		case key.Matches(msg, keys.Status):
			a, ok := w.selected()
			if !ok {
				return w, nil
			}
			next := nextAnimeStatus(a.Status)
			return w, mutate("Status updated", func() error {
				return w.hook.SetStatus(a.ID, next)
			}, w.hook.Key())
		case key.Matches(msg, keys.Inc), key.Matches(msg, keys.Dec):
			a, ok := w.selected()
			if !ok {
				return w, nil
			}
			ep := a.EpisodesWatched + 1
			if key.Matches(msg, keys.Dec) {
				ep = a.EpisodesWatched - 1
			}
			if ep < 0 {
				return w, notify(levelError, "Episodes watched cannot be negative")
			}
			return w, mutate("", func() error {
				return w.hook.Update(a.ID, store.AnimePatch{EpisodesWatched: &ep})
			}, w.hook.Key())
		case key.Matches(msg, keys.Rate):
			if _, ok := w.selected(); ok {
				return w.showRateForm()
			}
		case key.Matches(msg, keys.Delete):
			a, ok := w.selected()
			if !ok {
				return w, nil
			}
			return w, mutate("Anime removed", func() error {
				return w.hook.Delete(a.ID)
			}, w.hook.Key())
		}
	}
	return w, nil
}

func nextAnimeStatus(s store.AnimeStatus) store.AnimeStatus {
	for i, st := range store.AnimeStatuses {
		if st == s {
			return store.AnimeStatuses[(i+1)%len(store.AnimeStatuses)]
		}
	}
	return store.AnimePlanToWatch
}

func (w animeWidget) showAddForm() (widget, tea.Cmd) {
	*w.title = ""
	w.formKind = "add"
	w.form = newForm(huh.NewGroup(
		huh.NewInput().Title("Anime title").Value(w.title),
	))
	return w, w.form.Init()
}

func (w animeWidget) showRateForm() (widget, tea.Cmd) {
	a, _ := w.selected()
	*w.rating = ""
	if a.Rating != nil {
		*w.rating = strconv.FormatFloat(*a.Rating, 'f', -1, 64)
	}
	w.formKind = "rate"
	w.form = newForm(huh.NewGroup(
		huh.NewInput().Title("Rating (0-10) for " + truncate(a.Title, 24)).Value(w.rating),
	))
	return w, w.form.Init()
}

func (w animeWidget) updateForm(msg tea.Msg) (widget, tea.Cmd) {
	form, cmd, outcome := stepForm(w.form, msg)
	w.form = form
	if outcome != formDone {
		return w, cmd
	}
	w.form = nil
	return w, w.submit()
}

func (w animeWidget) submit() tea.Cmd {
	switch w.formKind {
	case "add":
		title := strings.TrimSpace(*w.title)
		if title == "" {
			return notify(levelError, "Please enter an anime title")
		}
		return mutate("Anime added", func() error {
			return w.hook.Add(title)
		}, w.hook.Key())
	case "rate":
		a, ok := w.selected()
		if !ok {
			return nil
		}
		r, err := strconv.ParseFloat(strings.TrimSpace(*w.rating), 64)
		if err != nil || r < 0 || r > 10 {
			return notify(levelError, "Rating must be a number between 0 and 10")
		}
		return mutate("Rating saved", func() error {
			return w.hook.Update(a.ID, store.AnimePatch{Rating: &r})
		}, w.hook.Key())
	}
	return nil
}

func (w animeWidget) view(width int, focused bool) string {
	rows := []string{titleStyle.Render("Anime Tracker")}

	if w.form != nil {
		rows = append(rows, "", w.form.View())
		return strings.Join(rows, "\n")
	}

	switch {
	case w.err != nil:
		rows = append(rows, errorStyle.Render("Failed to load anime"))
	case !w.loaded:
		rows = append(rows, mutedStyle.Render("Loading..."))
	case len(w.entries) == 0:
		rows = append(rows, mutedStyle.Render("No anime yet. Press n to add one."))
	}

	for i, a := range w.entries {
		cursor := "  "
		style := normalItemStyle
		if focused && i == w.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		progress := fmt.Sprintf("%d/%d", a.EpisodesWatched, a.TotalEpisodes)
		rating := ""
		if a.Rating != nil {
			rating = warningStyle.Render(fmt.Sprintf(" ★%.1f", *a.Rating))
		}
		status := statusStyle(a.Status).Render(animeStatusLabels[a.Status])
		name := truncate(a.Title, max(width-32, 8))
		rows = append(rows, style.Render(cursor+name)+"  "+status+" "+mutedStyle.Render(progress)+rating)
	}

	if focused {
		rows = append(rows, "", mutedStyle.Render("n: add  s: status  +/-: episode  *: rate  d: delete"))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(rows, "\n"))
}

func statusStyle(s store.AnimeStatus) lipgloss.Style {
	switch s {
	case store.AnimeWatching:
		return highlightStyle
	case store.AnimeCompleted:
		return successStyle
	}
	return mutedStyle
}
