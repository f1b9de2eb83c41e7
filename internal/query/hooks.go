package query

import (
	"fmt"
	"time"

	"github.com/sadopc/hibidash/internal/store"
)

// AnimeStore is the backend used by Anime.
type AnimeStore interface {
	ListAnime(userID string) ([]store.AnimeEntry, error)
	AddAnime(userID, title string) error
	UpdateAnime(id string, p store.AnimePatch) error
	UpdateAnimeStatus(id string, status store.AnimeStatus) error
	DeleteAnime(id string) error
}

type Anime struct {
	c      *Client
	db     AnimeStore
	userID string
}

func NewAnime(c *Client, db AnimeStore, userID string) *Anime {
	return &Anime{c: c, db: db, userID: userID}
}

func (h *Anime) Key() Key { return Key{Kind: KindAnime, UserID: h.userID} }

func (h *Anime) List() ([]store.AnimeEntry, error) {
	return Fetch(h.c, h.Key(), func() ([]store.AnimeEntry, error) {
		return h.db.ListAnime(h.userID)
	})
}

func (h *Anime) Add(title string) error {
	return Mutate(h.c, func() error { return h.db.AddAnime(h.userID, title) }, h.Key())
}

func (h *Anime) Update(id string, p store.AnimePatch) error {
	return Mutate(h.c, func() error { return h.db.UpdateAnime(id, p) }, h.Key())
}

func (h *Anime) SetStatus(id string, status store.AnimeStatus) error {
	return Mutate(h.c, func() error { return h.db.UpdateAnimeStatus(id, status) }, h.Key())
}

func (h *Anime) Delete(id string) error {
	return Mutate(h.c, func() error { return h.db.DeleteAnime(id) }, h.Key())
}

// TodoStore is the backend used by Todos.
type TodoStore interface {
	ListTodos(userID string) ([]store.TodoItem, error)
	AddTodo(userID, title string, priority store.Priority) error
	UpdateTodo(id string, p store.TodoPatch) error
	ToggleTodo(id string, completed bool) error
	DeleteTodo(id string) error
}

type Todos struct {
	c      *Client
	db     TodoStore
	userID string
}

func NewTodos(c *Client, db TodoStore, userID string) *Todos {
	return &Todos{c: c, db: db, userID: userID}
}

func (h *Todos) Key() Key { return Key{Kind: KindTodos, UserID: h.userID} }

func (h *Todos) List() ([]store.TodoItem, error) {
	return Fetch(h.c, h.Key(), func() ([]store.TodoItem, error) {
		return h.db.ListTodos(h.userID)
	})
}

func (h *Todos) Add(title string, priority store.Priority) error {
	return Mutate(h.c, func() error { return h.db.AddTodo(h.userID, title, priority) }, h.Key())
}

func (h *Todos) Update(id string, p store.TodoPatch) error {
	return Mutate(h.c, func() error { return h.db.UpdateTodo(id, p) }, h.Key())
}

// Toggle sets completed; callers pass the negation of the value they rendered.
func (h *Todos) Toggle(id string, completed bool) error {
	return Mutate(h.c, func() error { return h.db.ToggleTodo(id, completed) }, h.Key())
}

func (h *Todos) Delete(id string) error {
	return Mutate(h.c, func() error { return h.db.DeleteTodo(id) }, h.Key())
}

// SpendingStore is the backend used by Spending.
type SpendingStore interface {
	ListSpending(userID string) ([]store.SpendingEntry, error)
	AddSpending(userID string, in store.SpendingInput) error
	DeleteSpending(id string) error
	ListSpendingGoals(userID string) ([]store.SpendingGoal, error)
	SetSpendingGoal(userID, category string, limit store.Money) error
	DeleteSpendingGoal(id string) error
}

type Spending struct {
	c      *Client
	db     SpendingStore
	userID string
}

func NewSpending(c *Client, db SpendingStore, userID string) *Spending {
	return &Spending{c: c, db: db, userID: userID}
}

func (h *Spending) Key() Key      { return Key{Kind: KindSpending, UserID: h.userID} }
func (h *Spending) GoalsKey() Key { return Key{Kind: KindSpendingGoals, UserID: h.userID} }

func (h *Spending) List() ([]store.SpendingEntry, error) {
	return Fetch(h.c, h.Key(), func() ([]store.SpendingEntry, error) {
		return h.db.ListSpending(h.userID)
	})
}

func (h *Spending) Add(in store.SpendingInput) error {
	return Mutate(h.c, func() error { return h.db.AddSpending(h.userID, in) }, h.Key())
}

func (h *Spending) Delete(id string) error {
	return Mutate(h.c, func() error { return h.db.DeleteSpending(id) }, h.Key())
}

func (h *Spending) Goals() ([]store.SpendingGoal, error) {
	return Fetch(h.c, h.GoalsKey(), func() ([]store.SpendingGoal, error) {
		return h.db.ListSpendingGoals(h.userID)
	})
}

func (h *Spending) SetGoal(category string, limit store.Money) error {
	return Mutate(h.c, func() error { return h.db.SetSpendingGoal(h.userID, category, limit) }, h.GoalsKey())
}

func (h *Spending) DeleteGoal(id string) error {
	return Mutate(h.c, func() error { return h.db.DeleteSpendingGoal(id) }, h.GoalsKey())
}

// Total sums the currently cached list. It is zero until List succeeds.
func (h *Spending) Total() store.Money {
	entries, _ := Cached[[]store.SpendingEntry](h.c, h.Key())
	return store.TotalSpending(entries)
}

// ByCategory sums the currently cached list per category.
func (h *Spending) ByCategory() map[string]store.Money {
	entries, _ := Cached[[]store.SpendingEntry](h.c, h.Key())
	return sumByCategory(entries, "")
}

// MonthByCategory sums cached entries dated in the month of t.
func (h *Spending) MonthByCategory(t time.Time) map[string]store.Money {
	entries, _ := Cached[[]store.SpendingEntry](h.c, h.Key())
	return sumByCategory(entries, t.Format("2006-01"))
}

func sumByCategory(entries []store.SpendingEntry, monthPrefix string) map[string]store.Money {
	out := make(map[string]store.Money)
	for _, e := range entries {
		if monthPrefix != "" && (len(e.Date) < 7 || e.Date[:7] != monthPrefix) {
			continue
		}
		out[e.Category] += e.Amount
	}
	return out
}

// HealthStore is the backend used by Health.
type HealthStore interface {
	GetHealthMetric(userID, date string) (*store.HealthMetric, error)
	SetHealthMetric(userID, date string, field store.HealthField, value float64) error
	ListHealthMetrics(userID, from, to string) ([]store.HealthMetric, error)
}

type Health struct {
	c      *Client
	db     HealthStore
	userID string
	today  func() string
}

func NewHealth(c *Client, db HealthStore, userID string) *Health {
	return &Health{c: c, db: db, userID: userID, today: store.Today}
}

// Key is scoped to the current UTC date, so a cached row is never served
// once the day has changed.
func (h *Health) Key() Key { return h.keyFor(h.today()) }

func (h *Health) keyFor(day string) Key {
	return Key{Kind: KindHealth, UserID: h.userID, Period: day}
}

// Day is the date Today and Set currently address.
func (h *Health) Day() string { return h.today() }

// Today returns today's row, or nil if nothing was recorded yet.
func (h *Health) Today() (*store.HealthMetric, error) {
	day := h.today()
	return Fetch(h.c, h.keyFor(day), func() (*store.HealthMetric, error) {
		return h.db.GetHealthMetric(h.userID, day)
	})
}

// Set records one field for today.
func (h *Health) Set(field store.HealthField, value float64) error {
	day := h.today()
	return Mutate(h.c, func() error { return h.db.SetHealthMetric(h.userID, day, field, value) }, h.keyFor(day))
}

// Range is uncached; it backs the reports view.
func (h *Health) Range(from, to string) ([]store.HealthMetric, error) {
	if h.userID == "" {
		return nil, ErrNoUser
	}
	return h.db.ListHealthMetrics(h.userID, from, to)
}

// SettingsStore is the backend used by Settings.
type SettingsStore interface {
	EnsureUserSettings(userID string) (*store.UserSettings, error)
	UpdateUserSettings(userID string, p store.SettingsPatch) error
}

type Settings struct {
	c      *Client
	db     SettingsStore
	userID string
}

func NewSettings(c *Client, db SettingsStore, userID string) *Settings {
	return &Settings{c: c, db: db, userID: userID}
}

func (h *Settings) Key() Key { return Key{Kind: KindSettings, UserID: h.userID} }

// Get returns the user's settings, creating the default row on first access.
func (h *Settings) Get() (*store.UserSettings, error) {
	return Fetch(h.c, h.Key(), func() (*store.UserSettings, error) {
		return h.db.EnsureUserSettings(h.userID)
	})
}

func (h *Settings) Update(p store.SettingsPatch) error {
	return Mutate(h.c, func() error { return h.db.UpdateUserSettings(h.userID, p) }, h.Key())
}

// PomodoroStore is the backend used by Pomodoro.
type PomodoroStore interface {
	RecordPomodoro(userID string, duration time.Duration) error
	CountPomodoros(userID string, from, to time.Time) (int, time.Duration, error)
}

// PomodoroStats summarises today's finished sessions.
type PomodoroStats struct {
	Count int
	Total time.Duration
}

type Pomodoro struct {
	c      *Client
	db     PomodoroStore
	userID string
	today  func() string
}

func NewPomodoro(c *Client, db PomodoroStore, userID string) *Pomodoro {
	return &Pomodoro{c: c, db: db, userID: userID, today: store.Today}
}

// Key uses the same UTC day boundary as Health.
func (h *Pomodoro) Key() Key { return h.keyFor(h.today()) }

func (h *Pomodoro) keyFor(day string) Key {
	return Key{Kind: KindPomodoro, UserID: h.userID, Period: day}
}

func (h *Pomodoro) Today() (PomodoroStats, error) {
	day := h.today()
	return Fetch(h.c, h.keyFor(day), func() (PomodoroStats, error) {
		start, err := time.Parse(store.DateLayout, day)
		if err != nil {
			return PomodoroStats{}, fmt.Errorf("pomodoro day %q: %w", day, err)
		}
		n, total, err := h.db.CountPomodoros(h.userID, start, start.AddDate(0, 0, 1))
		if err != nil {
			return PomodoroStats{}, err
		}
		return PomodoroStats{Count: n, Total: total}, nil
	})
}

func (h *Pomodoro) Record(d time.Duration) error {
	return Mutate(h.c, func() error { return h.db.RecordPomodoro(h.userID, d) }, h.keyFor(h.today()))
}
