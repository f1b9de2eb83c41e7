package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/sadopc/hibidash/internal/query"
	"github.com/sadopc/hibidash/internal/store"
)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseDate accepts YYYY-MM-DD or phrases like "yesterday" and "last friday".
// Blank input yields the zero time, which the store reads as today. The
// result is the calendar day at midnight UTC.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(store.DateLayout, s)
	if err != nil {
		r, perr := dateParser.Parse(s, now)
		if perr != nil {
			return time.Time{}, fmt.Errorf("parse date %q: %w", s, perr)
		}
		if r == nil {
			return time.Time{}, fmt.Errorf("unrecognised date %q", s)
		}
		t = r.Time
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

const recentRows = 5

type spendingDataMsg struct {
	entries []store.SpendingEntry
	goals   []store.SpendingGoal
	err     error
}

type spendingWidget struct {
	hook    *query.Spending
	entries []store.SpendingEntry
	goals   []store.SpendingGoal
	cursor  int
	err     error
	loaded  bool

	form        *huh.Form
	formKind    string // "add", "goal"
	amount      *string
	category    *string
	description *string
	date        *string
}

func newSpendingWidget(h *query.Spending) spendingWidget {
	var amount, category, description, date string
	return spendingWidget{
		hook:        h,
		amount:      &amount,
		category:    &category,
		description: &description,
		date:        &date,
	}
}

func (w spendingWidget) id() string { return store.WidgetSpending }
func (w spendingWidget) reads() []query.Key {
	return []query.Key{w.hook.Key(), w.hook.GoalsKey()}
}
func (w spendingWidget) formActive() bool { return w.form != nil }

func (w spendingWidget) refresh() tea.Cmd {
	return func() tea.Msg {
		entries, err := w.hook.List()
		if err != nil {
			return spendingDataMsg{err: err}
		}
		goals, err := w.hook.Goals()
		return spendingDataMsg{entries: entries, goals: goals, err: err}
	}
}

func (w spendingWidget) update(msg tea.Msg) (widget, tea.Cmd) {
	if w.form != nil {
		form, cmd, outcome := stepForm(w.form, msg)
		w.form = form
		if outcome != formDone {
			return w, cmd
		}
		w.form = nil
		if w.formKind == "goal" {
			return w, w.submitGoal()
		}
		return w, w.submitEntry(time.Now())
	}

	switch msg := msg.(type) {
	case spendingDataMsg:
		w.loaded = true
		w.err = msg.err
		if msg.err == nil {
			w.entries = msg.entries
			w.goals = msg.goals
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
			*w.amount, *w.category, *w.description, *w.date = "", "", "", ""
			w.formKind = "add"
			w.form = newForm(huh.NewGroup(
				huh.NewInput().Title("Amount").Placeholder("12.50").Value(w.amount),
				huh.NewInput().Title("Category").Placeholder("Food").Value(w.category),
				huh.NewInput().Title("Description").Placeholder("optional").Value(w.description),
				huh.NewInput().Title("Date").Placeholder("today, yesterday, 2025-01-31").Value(w.date),
			))
			return w, w.form.Init()
		case key.Matches(msg, keys.Goal):
			*w.category, *w.amount = "", ""
			w.formKind = "goal"
			w.form = newForm(huh.NewGroup(
				huh.NewInput().Title("Category").Value(w.category),
				huh.NewInput().Title("Monthly limit").Description("0 removes the goal").Placeholder("300").Value(w.amount),
			))
			return w, w.form.Init()
		case key.Matches(msg, keys.Delete):
			if w.cursor < 0 || w.cursor >= len(w.entries) {
				return w, nil
			}
			e := w.entries[w.cursor]
			return w, mutate("Expense deleted", func() error {
				return w.hook.Delete(e.ID)
			}, w.hook.Key())
		}
	}
	return w, nil
}

func (w spendingWidget) submitEntry(now time.Time) tea.Cmd {
	if isBlank(*w.amount) || isBlank(*w.category) {
		return notify(levelError, "Please fill in amount and category")
	}
	amount, err := store.ParseMoney(*w.amount)
	if err != nil {
		return notify(levelError, "Amount must be a number")
	}
	date, err := parseDate(*w.date, now)
	if err != nil {
		return notifyErr(err)
	}
	in := store.SpendingInput{
		Amount:      amount,
		Category:    strings.TrimSpace(*w.category),
		Description: strings.TrimSpace(*w.description),
		Date:        date,
	}
	return mutate("Expense added", func() error {
		return w.hook.Add(in)
	}, w.hook.Key())
}

func (w spendingWidget) submitGoal() tea.Cmd {
	if isBlank(*w.amount) || isBlank(*w.category) {
		return notify(levelError, "Please fill in category and limit")
	}
	limit, err := store.ParseMoney(*w.amount)
	if err != nil || limit < 0 {
		return notify(levelError, "Limit must be a positive number, or 0 to remove the goal")
	}
	category := strings.TrimSpace(*w.category)
	if limit == 0 {
		g, ok := w.findGoal(category)
		if !ok {
			return notify(levelError, "No goal set for "+category)
		}
		return mutate("Goal removed for "+g.Category, func() error {
			return w.hook.DeleteGoal(g.ID)
		}, w.hook.GoalsKey())
	}
	return mutate("Goal saved for "+category, func() error {
		return w.hook.SetGoal(category, limit)
	}, w.hook.GoalsKey())
}

// findGoal prefers an exact category match, then a case-insensitive one.
func (w spendingWidget) findGoal(category string) (store.SpendingGoal, bool) {
	for _, g := range w.goals {
		if g.Category == category {
			return g, true
		}
	}
	for _, g := range w.goals {
		if strings.EqualFold(g.Category, category) {
			return g, true
		}
	}
	return store.SpendingGoal{}, false
}

func (w spendingWidget) view(width int, focused bool) string {
	rows := []string{titleStyle.Render("Spending Tracker")}

	if w.form != nil {
		rows = append(rows, "", w.form.View())
		return strings.Join(rows, "\n")
	}

	switch {
	case w.err != nil:
		rows = append(rows, errorStyle.Render("Failed to load spending"))
		return strings.Join(rows, "\n")
	case !w.loaded:
		rows = append(rows, mutedStyle.Render("Loading..."))
		return strings.Join(rows, "\n")
	}

	rows = append(rows, "Total: "+accentStyle.Render(w.hook.Total().String()))

	month := w.hook.MonthByCategory(time.Now())
	if len(month) > 0 || len(w.goals) > 0 {
		rows = append(rows, subtitleStyle.Render("This month"))
		limits := make(map[string]store.Money, len(w.goals))
		for _, g := range w.goals {
			limits[g.Category] = g.MonthlyLimit
			if _, ok := month[g.Category]; !ok {
				month[g.Category] = 0
			}
		}
		cats := make([]string, 0, len(month))
		for c := range month {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			label := lipgloss.NewStyle().Foreground(categoryColor(c)).Render(fmt.Sprintf("%-12s", truncate(c, 12)))
			line := label + " " + month[c].String()
			if limit, ok := limits[c]; ok {
				bar := progressBar(month[c].Float(), limit.Float(), 10)
				style := successStyle
				if month[c] > limit {
					style = errorStyle
				}
				line += " " + style.Render(bar) + mutedStyle.Render(" / "+limit.String())
			}
			rows = append(rows, line)
		}
	}

	if len(w.entries) == 0 {
		rows = append(rows, mutedStyle.Render("No expenses yet. Press n to add one."))
	} else {
		rows = append(rows, subtitleStyle.Render("Recent"))
	}
	start := max(w.cursor-recentRows+1, 0)
	for i := start; i < len(w.entries) && i < start+recentRows; i++ {
		e := w.entries[i]
		cursor := "  "
		style := normalItemStyle
		if focused && i == w.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		desc := e.Category
		if e.Description != "" {
			desc += ": " + e.Description
		}
		rows = append(rows, style.Render(cursor+e.Date+" "+truncate(desc, max(width-26, 8)))+" "+e.Amount.String())
	}

	if focused {
		rows = append(rows, "", mutedStyle.Render("n: add  g: set goal (0 removes)  d: delete"))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(rows, "\n"))
}
