package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

const healthColumns = `id, user_id, date, steps, sleep_hours, water_glasses, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHealth(r rowScanner) (*HealthMetric, error) {
	h := &HealthMetric{}
	var steps sql.NullInt64
	var sleep, water sql.NullFloat64
	var createdAt string
	if err := r.Scan(&h.ID, &h.UserID, &h.Date, &steps, &sleep, &water, &createdAt); err != nil {
		return nil, err
	}
	if steps.Valid {
		h.Steps = &steps.Int64
	}
	if sleep.Valid {
		h.SleepHours = &sleep.Float64
	}
	if water.Valid {
		h.WaterGlasses = &water.Float64
	}
	h.CreatedAt = parseTime(createdAt)
	return h, nil
}

// GetHealthMetric returns the row for (userID, date), or nil if there is none.
func (s *Store) GetHealthMetric(userID, date string) (*HealthMetric, error) {
	h, err := scanHealth(s.db.QueryRow(
		`SELECT `+healthColumns+` FROM health_metrics WHERE user_id = ? AND date = ?`, userID, date,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get health metric: %w", err)
	}
	return h, nil
}

func (s *Store) TodayHealth(userID string) (*HealthMetric, error) {
	return s.GetHealthMetric(userID, Today())
}

// SetHealthMetric writes one metric for (userID, date) in a single upsert.
// A new row gets only that column populated; an existing row has only that
// column patched, so concurrent writers of different fields do not clobber
// each other.
func (s *Store) SetHealthMetric(userID, date string, field HealthField, value float64) error {
	col, err := field.column()
	if err != nil {
		return err
	}
	var v any = value
	if field == HealthSteps {
		if value != math.Trunc(value) {
			return fmt.Errorf("set health metric steps: %v is not a whole number", value)
		}
		v = int64(value)
	}
	// col comes from a closed set, never from user input.
	query := fmt.Sprintf(
		`INSERT INTO health_metrics (id, user_id, date, %[1]s, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, date) DO UPDATE SET %[1]s = excluded.%[1]s`, col)
	if _, err := s.db.Exec(query, uuid.NewString(), userID, date, v, nowUTC()); err != nil {
		return fmt.Errorf("set health metric %s: %w", col, err)
	}
	return nil
}

// ListHealthMetrics returns rows with from <= date < to, oldest first.
func (s *Store) ListHealthMetrics(userID, from, to string) ([]HealthMetric, error) {
	rows, err := s.db.Query(
		`SELECT `+healthColumns+` FROM health_metrics
		 WHERE user_id = ? AND date >= ? AND date < ? ORDER BY date`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list health metrics: %w", err)
	}
	defer rows.Close()

	var metrics []HealthMetric
	for rows.Next() {
		h, err := scanHealth(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, *h)
	}
	return metrics, rows.Err()
}
