package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func (s *Store) ListTodos(userID string) ([]TodoItem, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, completed, priority, created_at, updated_at
		 FROM todo_items WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var items []TodoItem
	for rows.Next() {
		var t TodoItem
		var completed int
		var priority, createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &completed, &priority, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		t.Completed = completed == 1
		t.Priority = Priority(priority)
		t.CreatedAt = parseTime(createdAt)
		t.UpdatedAt = parseTime(updatedAt)
		items = append(items, t)
	}
	return items, rows.Err()
}

// AddTodo inserts an uncompleted item. An empty priority means medium.
func (s *Store) AddTodo(userID, title string, priority Priority) error {
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return fmt.Errorf("insert todo: invalid priority %q", string(priority))
	}
	now := nowUTC()
	_, err := s.db.Exec(
		`INSERT INTO todo_items (id, user_id, title, completed, priority, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?, ?)`,
		uuid.NewString(), userID, title, string(priority), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (s *Store) UpdateTodo(id string, p TodoPatch) error {
	var sets []string
	var args []any
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, boolInt(*p.Completed))
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return fmt.Errorf("update todo: invalid priority %q", string(*p.Priority))
		}
		sets = append(sets, "priority = ?")
		args = append(args, string(*p.Priority))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, nowUTC(), id)

	_, err := s.db.Exec(`UPDATE todo_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return nil
}

// ToggleTodo writes the given completion state.
func (s *Store) ToggleTodo(id string, completed bool) error {
	return s.UpdateTodo(id, TodoPatch{Completed: &completed})
}

func (s *Store) DeleteTodo(id string) error {
	if _, err := s.db.Exec(`DELETE FROM todo_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}
