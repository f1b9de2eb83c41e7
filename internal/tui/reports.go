package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hibidash/internal/store"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

type reportsModel struct {
	sess   *session
	width  int
	height int

	mode   reportMode
	offset int // 7-day blocks or weeks back from today (0 = current)
	now    func() time.Time

	spending []store.SpendingEntry
	health   []store.HealthMetric
	err      error

	chart barchart.Model
}

func newReportsModel(sess *session) reportsModel {
	return reportsModel{
		sess:  sess,
		now:   time.Now,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	spending []store.SpendingEntry
	health   []store.HealthMetric
	err      error
}

func (r reportsModel) refresh() tea.Cmd {
	from, to := r.dateRange()
	return func() tea.Msg {
		all, err := r.sess.spending.List()
		if err != nil {
			return reportsDataMsg{err: err}
		}
		lo, hi := from.Format(store.DateLayout), to.Format(store.DateLayout)
		var inRange []store.SpendingEntry
		for _, e := range all {
			if e.Date >= lo && e.Date < hi {
				inRange = append(inRange, e)
			}
		}
		health, err := r.sess.health.Range(lo, hi)
		return reportsDataMsg{spending: inRange, health: health, err: err}
	}
}

// dateRange returns [from, to) in UTC days.
func (r reportsModel) dateRange() (time.Time, time.Time) {
	now := r.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch r.mode {
	case reportWeekly:
		weekday := today.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		startOfWeek := today.AddDate(0, 0, -int(weekday-time.Monday))
		startOfWeek = startOfWeek.AddDate(0, 0, -7*r.offset)
		return startOfWeek, startOfWeek.AddDate(0, 0, 7)
	default:
		end := today.AddDate(0, 0, 1-7*r.offset)
		return end.AddDate(0, 0, -7), end
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.err = msg.err
		r.spending = msg.spending
		r.health = msg.health
		r.buildChart()
		return r, nil

	case mutationDoneMsg:
		for _, k := range msg.keys {
			if k == r.sess.spending.Key() || k == r.sess.health.Key() {
				return r, r.refresh()
			}
		}
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Mode):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

// dailyByCategory groups spending per date, then per category.
func dailyByCategory(entries []store.SpendingEntry) map[string]map[string]store.Money {
	out := make(map[string]map[string]store.Money)
	for _, e := range entries {
		if out[e.Date] == nil {
			out[e.Date] = make(map[string]store.Money)
		}
		out[e.Date][e.Category] += e.Amount
	}
	return out
}

func (r reportsModel) categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, e := range r.spending {
		if !seen[e.Category] {
			seen[e.Category] = true
			cats = append(cats, e.Category)
		}
	}
	sort.Strings(cats)
	return cats
}

func (r *reportsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	from, to := r.dateRange()
	byDay := dailyByCategory(r.spending)
	cats := r.categories()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		day := byDay[d.Format(store.DateLayout)]

		var values []barchart.BarValue
		for _, c := range cats {
			if amt, ok := day[c]; ok && amt > 0 {
				values = append(values, barchart.BarValue{
					Name:  c,
					Value: amt.Float(),
					Style: lipgloss.NewStyle().Foreground(categoryColor(c)),
				})
			}
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: values,
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  m: daily/weekly")

	if r.err != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", errorStyle.Render("  Failed to load reports: "+r.err.Error()), "", nav,
		))
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "",
			subtitleStyle.Render("Spending by day"),
			r.chart.View(), "",
			r.renderLegend(), "",
			r.renderSpendingTable(w), "",
			subtitleStyle.Render("Steps"),
			r.renderStepsTable(), "",
			nav,
		),
	)
}

func (r reportsModel) renderSpendingTable(w int) string {
	if len(r.spending) == 0 {
		return mutedStyle.Render("  No spending for this period")
	}

	byDay := dailyByCategory(r.spending)
	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %-20s %10s", "Date", "Category", "Amount")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 44))),
	}
	var total store.Money
	for _, d := range dates {
		cats := make([]string, 0, len(byDay[d]))
		for c := range byDay[d] {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			dot := lipgloss.NewStyle().Foreground(categoryColor(c)).Render("●")
			rows = append(rows, fmt.Sprintf("  %-12s %s %-18s %10s", d, dot, truncate(c, 18), byDay[d][c]))
			total += byDay[d][c]
		}
	}
	rows = append(rows, fmt.Sprintf("  %-33s %10s", "Total", accentStyle.Render(total.String())))
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderStepsTable() string {
	if len(r.health) == 0 {
		return mutedStyle.Render("  No health data for this period")
	}
	var rows []string
	for _, m := range r.health {
		var steps int64
		if m.Steps != nil {
			steps = *m.Steps
		}
		rows = append(rows, fmt.Sprintf("  %-12s %s %6d",
			m.Date, secondaryStyle.Render(progressBar(float64(steps), stepGoal, 20)), steps))
	}
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderLegend() string {
	var items []string
	for _, c := range r.categories() {
		dot := lipgloss.NewStyle().Foreground(categoryColor(c)).Render("●")
		items = append(items, dot+" "+c)
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
