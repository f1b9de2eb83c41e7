package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hibidash/internal/query"
	"github.com/sadopc/hibidash/internal/store"
)

const stepGoal = 10000

type healthDataMsg struct {
	metric *store.HealthMetric
	err    error
}

type healthWidget struct {
	hook   *query.Health
	metric *store.HealthMetric
	err    error
	loaded bool

	form  *huh.Form
	steps *string
	sleep *string
	water *string
}

func newHealthWidget(h *query.Health) healthWidget {
	var steps, sleep, water string
	return healthWidget{hook: h, steps: &steps, sleep: &sleep, water: &water}
}

func (w healthWidget) id() string { return store.WidgetHealth }
func (w healthWidget) reads() []query.Key { return []query.Key{w.hook.Key()} }
func (w healthWidget) formActive() bool { return w.form != nil }

func (w healthWidget) refresh() tea.Cmd {
	return func() tea.Msg {
		m, err := w.hook.Today()
		return healthDataMsg{metric: m, err: err}
	}
}

func (w healthWidget) update(msg tea.Msg) (widget, tea.Cmd) {
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
	case healthDataMsg:
		w.loaded = true
		w.err = msg.err
		if msg.err == nil {
			w.metric = msg.metric
		}
		return w, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.New):
			*w.steps, *w.sleep, *w.water = "", "", ""
			w.form = newForm(huh.NewGroup(
				huh.NewInput().Title("Steps").Placeholder("8000").Value(w.steps),
				huh.NewInput().Title("Sleep (hours)").Placeholder("7.5").Value(w.sleep),
				huh.NewInput().Title("Water (glasses)").Placeholder("8").Value(w.water),
			))
			return w, w.form.Init()
		case key.Matches(msg, keys.Inc):
			// A row loaded before midnight belongs to another day.
			glasses := 1.0
			if m := w.metric; m != nil && m.Date == w.hook.Day() && m.WaterGlasses != nil {
				glasses = *m.WaterGlasses + 1
			}
			return w, mutate("", func() error {
				return w.hook.Set(store.HealthWater, glasses)
			}, w.hook.Key())
		}
	}
	return w, nil
}

// healthValues validates the form inputs. Blank fields are skipped.
func healthValues(steps, sleep, water string) (map[store.HealthField]float64, error) {
	out := make(map[store.HealthField]float64)
	for _, f := range []struct {
		field store.HealthField
		raw   string
		label string
	}{
		{store.HealthSteps, steps, "steps"},
		{store.HealthSleep, sleep, "sleep"},
		{store.HealthWater, water, "water"},
	} {
		raw := strings.TrimSpace(f.raw)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", f.label)
		}
		if v < 0 {
			return nil, fmt.Errorf("%s cannot be negative", f.label)
		}
		if f.field == store.HealthSteps && v != math.Trunc(v) {
			return nil, fmt.Errorf("%s must be a whole number", f.label)
		}
		out[f.field] = v
	}
	if len(out) == 0 {
		return nil, errors.New("enter at least one value")
	}
	return out, nil
}

func (w healthWidget) submit() tea.Cmd {
	values, err := healthValues(*w.steps, *w.sleep, *w.water)
	if err != nil {
		return notifyErr(err)
	}
	return mutate("Health data saved", func() error {
		return setHealth(w.hook, values)
	}, w.hook.Key())
}

// setHealth writes values one field at a time in HealthFields order. Each
// write is its own upsert, so a failure names what already landed.
func setHealth(h *query.Health, values map[store.HealthField]float64) error {
	var saved []string
	for _, f := range store.HealthFields {
		v, ok := values[f]
		if !ok {
			continue
		}
		if err := h.Set(f, v); err != nil {
			if len(saved) == 0 {
				return fmt.Errorf("%s failed: %w", f, err)
			}
			return fmt.Errorf("saved %s but %s failed: %w", strings.Join(saved, ", "), f, err)
		}
		saved = append(saved, string(f))
	}
	return nil
}

func (w healthWidget) view(width int, focused bool) string {
	rows := []string{titleStyle.Render("Health Tracker")}

	if w.form != nil {
		rows = append(rows, "", w.form.View())
		return strings.Join(rows, "\n")
	}

	switch {
	case w.err != nil:
		rows = append(rows, errorStyle.Render("Failed to load health data"))
		return strings.Join(rows, "\n")
	case !w.loaded:
		rows = append(rows, mutedStyle.Render("Loading..."))
		return strings.Join(rows, "\n")
	}

	var steps int64
	stepsText, sleepText, waterText := "-", "-", "-"
	if m := w.metric; m != nil {
		if m.Steps != nil {
			steps = *m.Steps
			stepsText = fmt.Sprintf("%d", steps)
		}
		if m.SleepHours != nil {
			sleepText = fmt.Sprintf("%.1fh", *m.SleepHours)
		}
		if m.WaterGlasses != nil {
			waterText = fmt.Sprintf("%.0f glasses", *m.WaterGlasses)
		}
	}

	barWidth := max(min(width-16, 30), 5)
	rows = append(rows,
		"Steps  "+highlightStyle.Render(stepsText)+mutedStyle.Render(fmt.Sprintf(" / %d", stepGoal)),
		"       "+secondaryStyle.Render(progressBar(float64(steps), stepGoal, barWidth)),
		"Sleep  "+highlightStyle.Render(sleepText),
		"Water  "+highlightStyle.Render(waterText),
	)

	if focused {
		rows = append(rows, "", mutedStyle.Render("n: log today  +: glass of water"))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(rows, "\n"))
}
