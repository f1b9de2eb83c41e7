package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *Store) ListSpending(userID string) ([]SpendingEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, amount_cents, category, description, date, created_at
		 FROM spending_entries WHERE user_id = ? ORDER BY date DESC, created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list spending: %w", err)
	}
	defer rows.Close()

	var entries []SpendingEntry
	for rows.Next() {
		var e SpendingEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Description, &e.Date, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) AddSpending(userID string, in SpendingInput) error {
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO spending_entries (id, user_id, amount_cents, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, int64(in.Amount), in.Category, in.Description,
		date.UTC().Format(DateLayout), nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("insert spending: %w", err)
	}
	return nil
}

func (s *Store) DeleteSpending(id string) error {
	if _, err := s.db.Exec(`DELETE FROM spending_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete spending: %w", err)
	}
	return nil
}

// TotalSpending sums the amounts of entries.
func TotalSpending(entries []SpendingEntry) Money {
	var total Money
	for _, e := range entries {
		total += e.Amount
	}
	return total
}

func (s *Store) ListSpendingGoals(userID string) ([]SpendingGoal, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, category, monthly_limit_cents, created_at, updated_at
		 FROM spending_goals WHERE user_id = ? ORDER BY category`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list spending goals: %w", err)
	}
	defer rows.Close()

	var goals []SpendingGoal
	for rows.Next() {
		var g SpendingGoal
		var createdAt, updatedAt string
		if err := rows.Scan(&g.ID, &g.UserID, &g.Category, &g.MonthlyLimit, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		g.CreatedAt = parseTime(createdAt)
		g.UpdatedAt = parseTime(updatedAt)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// SetSpendingGoal creates or replaces the monthly limit for a category.
func (s *Store) SetSpendingGoal(userID, category string, limit Money) error {
	now := nowUTC()
	_, err := s.db.Exec(
		`INSERT INTO spending_goals (id, user_id, category, monthly_limit_cents, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, category) DO UPDATE SET
		   monthly_limit_cents = excluded.monthly_limit_cents,
		   updated_at = excluded.updated_at`,
		uuid.NewString(), userID, category, int64(limit), now, now,
	)
	if err != nil {
		return fmt.Errorf("set spending goal: %w", err)
	}
	return nil
}

func (s *Store) DeleteSpendingGoal(id string) error {
	if _, err := s.db.Exec(`DELETE FROM spending_goals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete spending goal: %w", err)
	}
	return nil
}
