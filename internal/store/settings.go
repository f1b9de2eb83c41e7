package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const settingsColumns = `id, user_id, anime_tracker_enabled, daily_inspiration_enabled, spending_tracker_enabled,
	todo_list_enabled, health_tracker_enabled, mini_games_enabled, layout, pomodoro_minutes, created_at, updated_at`

// GetUserSettings returns the settings row for userID, or nil if none exists.
func (s *Store) GetUserSettings(userID string) (*UserSettings, error) {
	u := &UserSettings{}
	var anime, insp, spend, todo, health, games int
	var layout, createdAt, updatedAt string
	err := s.db.QueryRow(
		`SELECT `+settingsColumns+` FROM user_settings WHERE user_id = ?`, userID,
	).Scan(&u.ID, &u.UserID, &anime, &insp, &spend, &todo, &health, &games, &layout, &u.PomodoroMinutes, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user settings: %w", err)
	}
	u.AnimeTrackerEnabled = anime == 1
	u.DailyInspirationEnabled = insp == 1
	u.SpendingTrackerEnabled = spend == 1
	u.TodoListEnabled = todo == 1
	u.HealthTrackerEnabled = health == 1
	u.MiniGamesEnabled = games == 1
	if err := json.Unmarshal([]byte(layout), &u.Layout); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return u, nil
}

// EnsureUserSettings returns the settings for userID, creating the default
// row first if needed. The insert is a no-op on conflict, so concurrent
// callers end up with a single row.
func (s *Store) EnsureUserSettings(userID string) (*UserSettings, error) {
	now := nowUTC()
	_, err := s.db.Exec(
		`INSERT INTO user_settings (id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		uuid.NewString(), userID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure user settings: %w", err)
	}
	u, err := s.GetUserSettings(userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("ensure user settings: %w", ErrNotFound)
	}
	return u, nil
}

func (s *Store) UpdateUserSettings(userID string, p SettingsPatch) error {
	var sets []string
	var args []any
	flag := func(col string, v *bool) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, boolInt(*v))
		}
	}
	flag("anime_tracker_enabled", p.AnimeTrackerEnabled)
	flag("daily_inspiration_enabled", p.DailyInspirationEnabled)
	flag("spending_tracker_enabled", p.SpendingTrackerEnabled)
	flag("todo_list_enabled", p.TodoListEnabled)
	flag("health_tracker_enabled", p.HealthTrackerEnabled)
	flag("mini_games_enabled", p.MiniGamesEnabled)
	if p.Layout != nil {
		data, err := json.Marshal(p.Layout)
		if err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		sets = append(sets, "layout = ?")
		args = append(args, string(data))
	}
	if p.PomodoroMinutes != nil {
		if *p.PomodoroMinutes <= 0 {
			return fmt.Errorf("update user settings: pomodoro minutes must be positive")
		}
		sets = append(sets, "pomodoro_minutes = ?")
		args = append(args, *p.PomodoroMinutes)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, nowUTC(), userID)

	_, err := s.db.Exec(`UPDATE user_settings SET `+strings.Join(sets, ", ")+` WHERE user_id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update user settings: %w", err)
	}
	return nil
}

// GetMeta reads a process-level value. It returns ErrNotFound for unknown keys.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get meta %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get meta %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
