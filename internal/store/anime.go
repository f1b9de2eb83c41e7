package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultTotalEpisodes = 12
	animeColumns         = `id, user_id, title, status, episodes_watched, total_episodes, rating, created_at, updated_at`
)

func (s *Store) ListAnime(userID string) ([]AnimeEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+animeColumns+` FROM anime_entries WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list anime: %w", err)
	}
	defer rows.Close()

	var entries []AnimeEntry
	for rows.Next() {
		var a AnimeEntry
		var status, createdAt, updatedAt string
		var rating sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &status, &a.EpisodesWatched, &a.TotalEpisodes, &rating, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		a.Status = AnimeStatus(status)
		if rating.Valid {
			a.Rating = &rating.Float64
		}
		a.CreatedAt = parseTime(createdAt)
		a.UpdatedAt = parseTime(updatedAt)
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

// AddAnime inserts a new entry as plan_to_watch with 0 of 12 episodes watched.
func (s *Store) AddAnime(userID, title string) error {
	now := nowUTC()
	_, err := s.db.Exec(
		`INSERT INTO anime_entries (id, user_id, title, status, episodes_watched, total_episodes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		uuid.NewString(), userID, title, string(AnimePlanToWatch), defaultTotalEpisodes, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert anime: %w", err)
	}
	return nil
}

func (s *Store) UpdateAnime(id string, p AnimePatch) error {
	var sets []string
	var args []any
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return fmt.Errorf("update anime: invalid status %q", string(*p.Status))
		}
		sets = append(sets, "status = ?")
		args = append(args, string(*p.Status))
	}
	if p.EpisodesWatched != nil {
		if *p.EpisodesWatched < 0 {
			return fmt.Errorf("update anime: episodes watched must not be negative")
		}
		sets = append(sets, "episodes_watched = ?")
		args = append(args, *p.EpisodesWatched)
	}
	if p.TotalEpisodes != nil {
		sets = append(sets, "total_episodes = ?")
		args = append(args, *p.TotalEpisodes)
	}
	if p.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *p.Rating)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, nowUTC(), id)

	_, err := s.db.Exec(`UPDATE anime_entries SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update anime: %w", err)
	}
	return nil
}

func (s *Store) UpdateAnimeStatus(id string, status AnimeStatus) error {
	return s.UpdateAnime(id, AnimePatch{Status: &status})
}

func (s *Store) DeleteAnime(id string) error {
	if _, err := s.db.Exec(`DELETE FROM anime_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete anime: %w", err)
	}
	return nil
}
