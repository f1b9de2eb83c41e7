package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type AnimeStatus string

const (
	AnimePlanToWatch AnimeStatus = "plan_to_watch"
	AnimeWatching    AnimeStatus = "watching"
	AnimeCompleted   AnimeStatus = "completed"
)

// AnimeStatuses lists statuses in display order.
var AnimeStatuses = []AnimeStatus{AnimePlanToWatch, AnimeWatching, AnimeCompleted}

func (s AnimeStatus) Valid() bool {
	switch s {
	case AnimePlanToWatch, AnimeWatching, AnimeCompleted:
		return true
	}
	return false
}

type AnimeEntry struct {
	ID              string
	UserID          string
	Title           string
	Status          AnimeStatus
	EpisodesWatched int
	TotalEpisodes   int
	Rating          *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AnimePatch carries the fields to change; nil fields are left as they are.
type AnimePatch struct {
	Title           *string
	Status          *AnimeStatus
	EpisodesWatched *int
	TotalEpisodes   *int
	Rating          *float64
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type TodoItem struct {
	ID        string
	UserID    string
	Title     string
	Completed bool
	Priority  Priority
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TodoPatch struct {
	Title     *string
	Completed *bool
	Priority  *Priority
}

// Money is an amount in cents.
type Money int64

// ParseMoney parses "12.5", "12.50" or "-3" into cents.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return 0, fmt.Errorf("parse amount: empty")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parse amount %q: not a finite number", s)
	}
	return Money(math.Round(f * 100)), nil
}

func (m Money) Float() float64 {
	return float64(m) / 100
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}

type SpendingEntry struct {
	ID          string
	UserID      string
	Amount      Money
	Category    string
	Description string
	Date        string // YYYY-MM-DD
	CreatedAt   time.Time
}

// SpendingInput is the user-supplied part of a new spending entry.
// A zero Date means today.
type SpendingInput struct {
	Amount      Money
	Category    string
	Description string
	Date        time.Time
}

type SpendingGoal struct {
	ID           string
	UserID       string
	Category     string
	MonthlyLimit Money
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HealthField names one of the per-day metric columns.
type HealthField string

const (
	HealthSteps HealthField = "steps"
	HealthSleep HealthField = "sleep"
	HealthWater HealthField = "water"
)

var HealthFields = []HealthField{HealthSteps, HealthSleep, HealthWater}

func (f HealthField) column() (string, error) {
	switch f {
	case HealthSteps:
		return "steps", nil
	case HealthSleep:
		return "sleep_hours", nil
	case HealthWater:
		return "water_glasses", nil
	}
	return "", fmt.Errorf("unknown health field %q", string(f))
}

type HealthMetric struct {
	ID           string
	UserID       string
	Date         string
	Steps        *int64
	SleepHours   *float64
	WaterGlasses *float64
	CreatedAt    time.Time
}

// Widget identifiers used in UserSettings.Layout.
const (
	WidgetAnime       = "anime"
	WidgetInspiration = "inspiration"
	WidgetSpending    = "spending"
	WidgetTodo        = "todo"
	WidgetHealth      = "health"
	WidgetMiniGames   = "minigames"
)

type UserSettings struct {
	ID                      string
	UserID                  string
	AnimeTrackerEnabled     bool
	DailyInspirationEnabled bool
	SpendingTrackerEnabled  bool
	TodoListEnabled         bool
	HealthTrackerEnabled    bool
	MiniGamesEnabled        bool
	Layout                  []string
	PomodoroMinutes         int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Enabled reports whether the widget with the given id is switched on.
func (u UserSettings) Enabled(widget string) bool {
	switch widget {
	case WidgetAnime:
		return u.AnimeTrackerEnabled
	case WidgetInspiration:
		return u.DailyInspirationEnabled
	case WidgetSpending:
		return u.SpendingTrackerEnabled
	case WidgetTodo:
		return u.TodoListEnabled
	case WidgetHealth:
		return u.HealthTrackerEnabled
	case WidgetMiniGames:
		return u.MiniGamesEnabled
	}
	return false
}

type SettingsPatch struct {
	AnimeTrackerEnabled     *bool
	DailyInspirationEnabled *bool
	SpendingTrackerEnabled  *bool
	TodoListEnabled         *bool
	HealthTrackerEnabled    *bool
	MiniGamesEnabled        *bool
	Layout                  []string
	PomodoroMinutes         *int
}

type PomodoroSession struct {
	ID          int64
	UserID      string
	Duration    int // seconds
	CompletedAt time.Time
}
