package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/hibidash/internal/store"
)

// Source is the subset of the store a snapshot reads from.
type Source interface {
	EnsureUserSettings(userID string) (*store.UserSettings, error)
	ListAnime(userID string) ([]store.AnimeEntry, error)
	ListTodos(userID string) ([]store.TodoItem, error)
	ListSpending(userID string) ([]store.SpendingEntry, error)
	ListSpendingGoals(userID string) ([]store.SpendingGoal, error)
	ListHealthMetrics(userID, from, to string) ([]store.HealthMetric, error)
	ListPomodoros(userID string, limit int) ([]store.PomodoroSession, error)
}

type Snapshot struct {
	ExportedAt string         `json:"exported_at" yaml:"exported_at"`
	Email      string         `json:"email" yaml:"email"`
	Settings   settingsRecord `json:"settings" yaml:"settings"`
	Anime      []animeRecord  `json:"anime" yaml:"anime"`
	Todos      []todoRecord   `json:"todos" yaml:"todos"`
	Spending   []spendRecord  `json:"spending" yaml:"spending"`
	Goals      []goalRecord   `json:"spending_goals" yaml:"spending_goals"`
	Health     []healthRecord `json:"health" yaml:"health"`
	Pomodoros  []focusRecord  `json:"pomodoro_sessions" yaml:"pomodoro_sessions"`
	Totals     snapshotTotals `json:"totals" yaml:"totals"`
}

type settingsRecord struct {
	Enabled         []string `json:"enabled_widgets" yaml:"enabled_widgets"`
	Layout          []string `json:"layout" yaml:"layout"`
	PomodoroMinutes int      `json:"pomodoro_minutes" yaml:"pomodoro_minutes"`
}

type animeRecord struct {
	Title           string   `json:"title" yaml:"title"`
	Status          string   `json:"status" yaml:"status"`
	EpisodesWatched int      `json:"episodes_watched" yaml:"episodes_watched"`
	TotalEpisodes   int      `json:"total_episodes" yaml:"total_episodes"`
	Rating          *float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
}

type todoRecord struct {
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
	Priority  string `json:"priority" yaml:"priority"`
}

type spendRecord struct {
	Date        string  `json:"date" yaml:"date"`
	Category    string  `json:"category" yaml:"category"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Amount      float64 `json:"amount" yaml:"amount"`
}

type goalRecord struct {
	Category     string  `json:"category" yaml:"category"`
	MonthlyLimit float64 `json:"monthly_limit" yaml:"monthly_limit"`
}

type healthRecord struct {
	Date         string   `json:"date" yaml:"date"`
	Steps        *int64   `json:"steps,omitempty" yaml:"steps,omitempty"`
	SleepHours   *float64 `json:"sleep_hours,omitempty" yaml:"sleep_hours,omitempty"`
	WaterGlasses *float64 `json:"water_glasses,omitempty" yaml:"water_glasses,omitempty"`
}

type focusRecord struct {
	CompletedAt string `json:"completed_at" yaml:"completed_at"`
	Minutes     int    `json:"minutes" yaml:"minutes"`
}

type snapshotTotals struct {
	Spending       float64 `json:"spending" yaml:"spending"`
	TodosOpen      int     `json:"todos_open" yaml:"todos_open"`
	AnimeCompleted int     `json:"anime_completed" yaml:"anime_completed"`
	FocusMinutes   int     `json:"focus_minutes" yaml:"focus_minutes"`
}

// Collect reads everything the user owns. Health history covers all dates.
func Collect(src Source, user *store.User) (*Snapshot, error) {
	snap := &Snapshot{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Email:      user.Email,
	}

	settings, err := src.EnsureUserSettings(user.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range []string{store.WidgetAnime, store.WidgetInspiration, store.WidgetSpending,
		store.WidgetTodo, store.WidgetHealth, store.WidgetMiniGames} {
		if settings.Enabled(id) {
			snap.Settings.Enabled = append(snap.Settings.Enabled, id)
		}
	}
	snap.Settings.Layout = settings.Layout
	snap.Settings.PomodoroMinutes = settings.PomodoroMinutes

	anime, err := src.ListAnime(user.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range anime {
		snap.Anime = append(snap.Anime, animeRecord{
			Title:           a.Title,
			Status:          string(a.Status),
			EpisodesWatched: a.EpisodesWatched,
			TotalEpisodes:   a.TotalEpisodes,
			Rating:          a.Rating,
		})
		if a.Status == store.AnimeCompleted {
			snap.Totals.AnimeCompleted++
		}
	}

	todos, err := src.ListTodos(user.ID)
	if err != nil {
		return nil, err
	}
	for _, t := range todos {
		snap.Todos = append(snap.Todos, todoRecord{Title: t.Title, Completed: t.Completed, Priority: string(t.Priority)})
		if !t.Completed {
			snap.Totals.TodosOpen++
		}
	}

	spending, err := src.ListSpending(user.ID)
	if err != nil {
		return nil, err
	}
	for _, e := range spending {
		snap.Spending = append(snap.Spending, spendRecord{
			Date:        e.Date,
			Category:    e.Category,
			Description: e.Description,
			Amount:      e.Amount.Float(),
		})
	}
	snap.Totals.Spending = store.TotalSpending(spending).Float()

	goals, err := src.ListSpendingGoals(user.ID)
	if err != nil {
		return nil, err
	}
	for _, g := range goals {
		snap.Goals = append(snap.Goals, goalRecord{Category: g.Category, MonthlyLimit: g.MonthlyLimit.Float()})
	}

	health, err := src.ListHealthMetrics(user.ID, "0000-01-01", "9999-12-31")
	if err != nil {
		return nil, err
	}
	for _, h := range health {
		snap.Health = append(snap.Health, healthRecord{
			Date:         h.Date,
			Steps:        h.Steps,
			SleepHours:   h.SleepHours,
			WaterGlasses: h.WaterGlasses,
		})
	}

	// Newest first, every session.
	sessions, err := src.ListPomodoros(user.ID, 0)
	if err != nil {
		return nil, err
	}
	for _, p := range sessions {
		snap.Pomodoros = append(snap.Pomodoros, focusRecord{
			CompletedAt: p.CompletedAt.UTC().Format(time.RFC3339),
			Minutes:     p.Duration / 60,
		})
		snap.Totals.FocusMinutes += p.Duration / 60
	}

	return snap, nil
}

func ToJSON(snap *Snapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
