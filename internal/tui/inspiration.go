package tui

import (
	"math/rand/v2"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hibidash/internal/query"
	"github.com/sadopc/hibidash/internal/store"
)

var quotes = []string{
	"The only way to do great work is to love what you do. - Steve Jobs",
	"Believe you can and you're halfway there. - Theodore Roosevelt",
	"Success is not final, failure is not fatal: it is the courage to continue that counts. - Winston Churchill",
	"Your time is limited, don't waste it living someone else's life. - Steve Jobs",
	"The future belongs to those who believe in the beauty of their dreams. - Eleanor Roosevelt",
	"It does not matter how slowly you go as long as you do not stop. - Confucius",
	"Everything you've ever wanted is on the other side of fear. - George Addair",
	"Believe in yourself. You are braver than you think, more talented than you know, and capable of more than you imagine. - Roy T. Bennett",
}

var facts = []string{
	"Did you know? Honey never spoils. Archaeologists have found 3000-year-old honey in Egyptian tombs that's still edible!",
	"Fun fact: Octopuses have three hearts and blue blood!",
	"Amazing: Your brain can generate enough electricity to power a small light bulb!",
	"Interesting: A group of flamingos is called a 'flamboyance'!",
	"Cool fact: The shortest war in history lasted only 38 minutes!",
	"Did you know? Bananas are berries, but strawberries aren't!",
}

type inspirationWidget struct {
	isQuote bool
	text    string
	rnd     func(n int) int
}

func newInspirationWidget() inspirationWidget {
	w := inspirationWidget{rnd: rand.IntN}
	w.pick()
	return w
}

// pick chooses a quote or a fact with equal odds.
func (w *inspirationWidget) pick() {
	w.isQuote = w.rnd(2) == 0
	if w.isQuote {
		w.text = quotes[w.rnd(len(quotes))]
	} else {
		w.text = facts[w.rnd(len(facts))]
	}
}

func (w inspirationWidget) id() string { return store.WidgetInspiration }
func (w inspirationWidget) reads() []query.Key { return nil }
func (w inspirationWidget) refresh() tea.Cmd { return nil }
func (w inspirationWidget) formActive() bool { return false }

func (w inspirationWidget) update(msg tea.Msg) (widget, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, keys.Refresh) {
		w.pick()
	}
	return w, nil
}

func (w inspirationWidget) view(width int, focused bool) string {
	label := "✨ Fact"
	if w.isQuote {
		label = "💬 Quote"
	}
	body := lipgloss.NewStyle().Width(max(width, 10)).Italic(w.isQuote).Render(w.text)
	rows := []string{
		titleStyle.Render("Daily Inspiration"),
		warningStyle.Render(label),
		body,
	}
	if focused {
		rows = append(rows, "", mutedStyle.Render("r: another one"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
