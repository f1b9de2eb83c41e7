package store

import (
	"fmt"
	"time"
)

// RecordPomodoro logs a finished countdown of the given length.
func (s *Store) RecordPomodoro(userID string, duration time.Duration) error {
	_, err := s.db.Exec(
		`INSERT INTO pomodoro_sessions (user_id, duration, completed_at) VALUES (?, ?, ?)`,
		userID, int(duration.Seconds()), nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("record pomodoro: %w", err)
	}
	return nil
}

// CountPomodoros returns how many sessions finished in [from, to) and their
// combined length.
func (s *Store) CountPomodoros(userID string, from, to time.Time) (count int, total time.Duration, err error) {
	var secs int64
	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(duration), 0)
		FROM pomodoro_sessions
		WHERE user_id = ? AND completed_at >= ? AND completed_at < ?`,
		userID, from.UTC().Format(tsLayout), to.UTC().Format(tsLayout),
	).Scan(&count, &secs)
	if err != nil {
		return 0, 0, fmt.Errorf("count pomodoros: %w", err)
	}
	return count, time.Duration(secs) * time.Second, nil
}

func (s *Store) ListPomodoros(userID string, limit int) ([]PomodoroSession, error) {
	query := `SELECT id, user_id, duration, completed_at FROM pomodoro_sessions WHERE user_id = ? ORDER BY completed_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("list pomodoros: %w", err)
	}
	defer rows.Close()

	var sessions []PomodoroSession
	for rows.Next() {
		var p PomodoroSession
		var completedAt string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Duration, &completedAt); err != nil {
			return nil, err
		}
		p.CompletedAt = parseTime(completedAt)
		sessions = append(sessions, p)
	}
	return sessions, rows.Err()
}
