package store

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *Store, email string) string {
	t.Helper()
	u, err := s.CreateUser(email, "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/hibidash.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Path() != path {
		t.Fatalf("Path() = %q, want %q", s.Path(), path)
	}
	s.Close()

	// Reopen: should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Users
// ============================================================

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	u, err := s.CreateUser("  Me@Example.com ", "hash")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == "" || u.Email != "me@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	byEmail, err := s.GetUserByEmail("ME@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if byEmail.ID != u.ID {
		t.Fatal("lookup by email returned a different user")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	newTestUser(t, s, "dup@example.com")
	if _, err := s.CreateUser("DUP@example.com", "x"); err == nil {
		t.Fatal("expected error for duplicate email")
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetUser("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Anime
// ============================================================

func TestAddAnimeDefaults(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "a@example.com")

	if err := s.AddAnime(uid, "Frieren"); err != nil {
		t.Fatal(err)
	}
	list, err := s.ListAnime(uid)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list))
	}
	a := list[0]
	if a.Title != "Frieren" || a.Status != AnimePlanToWatch || a.EpisodesWatched != 0 || a.TotalEpisodes != 12 {
		t.Fatalf("unexpected defaults: %+v", a)
	}
	if a.Rating != nil {
		t.Fatal("rating should default to nil")
	}
	if a.ID == "" || a.UserID != uid {
		t.Fatalf("unexpected ids: %+v", a)
	}
}

func TestListAnimeNewestFirst(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "a@example.com")
	s.AddAnime(uid, "First")
	s.AddAnime(uid, "Second")

	list, _ := s.ListAnime(uid)
	if len(list) != 2 || list[0].Title != "Second" || list[1].Title != "First" {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestListAnimeScopedToUser(t *testing.T) {
	s := newTestStore(t)
	u1 := newTestUser(t, s, "one@example.com")
	u2 := newTestUser(t, s, "two@example.com")
	s.AddAnime(u1, "Mine")
	s.AddAnime(u2, "Theirs")

	list, _ := s.ListAnime(u1)
	if len(list) != 1 || list[0].Title != "Mine" {
		t.Fatalf("list should only contain u1 rows: %+v", list)
	}
}

func TestListAnimeEmpty(t *testing.T) {
	s := newTestStore(t)
	list, err := s.ListAnime("nobody")
	if err != nil {
		t.Fatal(err)
	}
	if list != nil {
		t.Fatalf("expected nil slice, got %d items", len(list))
	}
}

func TestUpdateAnime(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "a@example.com")
	s.AddAnime(uid, "Show")
	id := mustAnime(t, s, uid).ID

	if err := s.UpdateAnimeStatus(id, AnimeWatching); err != nil {
		t.Fatal(err)
	}
	ep, rating := 5, 8.5
	if err := s.UpdateAnime(id, AnimePatch{EpisodesWatched: &ep, Rating: &rating}); err != nil {
		t.Fatal(err)
	}

	a := mustAnime(t, s, uid)
	if a.Status != AnimeWatching || a.EpisodesWatched != 5 || a.Rating == nil || *a.Rating != 8.5 {
		t.Fatalf("update failed: %+v", a)
	}
	if a.Title != "Show" || a.TotalEpisodes != 12 {
		t.Fatal("untouched fields should keep their values")
	}
}

func TestUpdateAnimeRejectsNegativeEpisodes(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "a@example.com")
	s.AddAnime(uid, "Show")
	id := mustAnime(t, s, uid).ID

	neg := -1
	if err := s.UpdateAnime(id, AnimePatch{EpisodesWatched: &neg}); err == nil {
		t.Fatal("expected error for negative episodes")
	}
	bad := AnimeStatus("dropped")
	if err := s.UpdateAnime(id, AnimePatch{Status: &bad}); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestAnimeStatusTransitionsUnconstrained(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "a@example.com")
	s.AddAnime(uid, "Show")
	id := mustAnime(t, s, uid).ID

	for _, st := range []AnimeStatus{AnimeCompleted, AnimePlanToWatch, AnimeWatching, AnimeCompleted} {
		if err := s.UpdateAnimeStatus(id, st); err != nil {
			t.Fatalf("transition to %s: %v", st, err)
		}
		if got := mustAnime(t, s, uid).Status; got != st {
			t.Fatalf("status = %s, want %s", got, st)
		}
	}
}

func TestDeleteAnime(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "a@example.com")
	s.AddAnime(uid, "Keep")
	s.AddAnime(uid, "Drop")
	list, _ := s.ListAnime(uid)
	dropID := list[0].ID

	if err := s.DeleteAnime(dropID); err != nil {
		t.Fatal(err)
	}
	list, _ = s.ListAnime(uid)
	for _, a := range list {
		if a.ID == dropID {
			t.Fatal("deleted entry still listed")
		}
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 remaining, got %d", len(list))
	}
}

func mustAnime(t *testing.T, s *Store, uid string) AnimeEntry {
	t.Helper()
	list, err := s.ListAnime(uid)
	if err != nil || len(list) == 0 {
		t.Fatalf("list anime: %v (%d rows)", err, len(list))
	}
	return list[0]
}

// ============================================================
// Todos
// ============================================================

func TestAddTodoDefaults(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "t@example.com")

	if err := s.AddTodo(uid, "Buy milk", ""); err != nil {
		t.Fatal(err)
	}
	items, _ := s.ListTodos(uid)
	if len(items) != 1 {
		t.Fatalf("expected 1 todo, got %d", len(items))
	}
	if items[0].Priority != PriorityMedium || items[0].Completed {
		t.Fatalf("unexpected defaults: %+v", items[0])
	}
}

func TestAddTodoInvalidPriority(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "t@example.com")
	if err := s.AddTodo(uid, "x", Priority("urgent")); err == nil {
		t.Fatal("expected error for unknown priority")
	}
}

func TestToggleTodoTwice(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "t@example.com")
	s.AddTodo(uid, "Task", PriorityHigh)
	items, _ := s.ListTodos(uid)
	orig := items[0]

	s.ToggleTodo(orig.ID, !orig.Completed)
	items, _ = s.ListTodos(uid)
	if items[0].Completed == orig.Completed {
		t.Fatal("first toggle should flip completed")
	}
	s.ToggleTodo(orig.ID, !items[0].Completed)
	items, _ = s.ListTodos(uid)
	if items[0].Completed != orig.Completed {
		t.Fatal("second toggle should restore completed")
	}
	if items[0].Priority != PriorityHigh {
		t.Fatal("toggle should not touch priority")
	}
}

func TestUpdateTodo(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "t@example.com")
	s.AddTodo(uid, "Old", PriorityLow)
	items, _ := s.ListTodos(uid)

	title, prio := "New", PriorityHigh
	if err := s.UpdateTodo(items[0].ID, TodoPatch{Title: &title, Priority: &prio}); err != nil {
		t.Fatal(err)
	}
	items, _ = s.ListTodos(uid)
	if items[0].Title != "New" || items[0].Priority != PriorityHigh {
		t.Fatalf("update failed: %+v", items[0])
	}
}

func TestDeleteTodo(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "t@example.com")
	s.AddTodo(uid, "Gone", "")
	items, _ := s.ListTodos(uid)

	s.DeleteTodo(items[0].ID)
	items, _ = s.ListTodos(uid)
	if len(items) != 0 {
		t.Fatal("todo should be deleted")
	}
}

// ============================================================
// Spending
// ============================================================

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want Money
	}{
		{"12.50", 1250},
		{"12.5", 1250},
		{"$7.25", 725},
		{"-3", -300},
		{"0.1", 10},
		{" 19.999 ", 2000},
	}
	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		if err != nil {
			t.Fatalf("ParseMoney(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseMoney(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "abc", "NaN", "Inf"} {
		if _, err := ParseMoney(bad); err == nil {
			t.Fatalf("ParseMoney(%q) should fail", bad)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := Money(1975).String(); got != "$19.75" {
		t.Fatalf("got %q", got)
	}
	if got := Money(-5).String(); got != "-$0.05" {
		t.Fatalf("got %q", got)
	}
}

func TestSpendingTotal(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "s@example.com")

	if err := s.AddSpending(uid, SpendingInput{Amount: 1250, Category: "Food"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddSpending(uid, SpendingInput{Amount: 725, Category: "Transport"}); err != nil {
		t.Fatal(err)
	}

	entries, err := s.ListSpending(uid)
	if err != nil {
		t.Fatal(err)
	}
	total := TotalSpending(entries)
	if total.Float() != 19.75 {
		t.Fatalf("expected 19.75, got %v", total.Float())
	}
}

func TestAddSpendingDefaultsToToday(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "s@example.com")
	s.AddSpending(uid, SpendingInput{Amount: 100, Category: "Food", Description: "lunch"})

	entries, _ := s.ListSpending(uid)
	if entries[0].Date != Today() {
		t.Fatalf("expected today's date, got %s", entries[0].Date)
	}
	if entries[0].Description != "lunch" {
		t.Fatal("description not stored")
	}
}

func TestListSpendingByDateDesc(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "s@example.com")
	old := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s.AddSpending(uid, SpendingInput{Amount: 100, Category: "Old", Date: old})
	s.AddSpending(uid, SpendingInput{Amount: 200, Category: "New"})

	entries, _ := s.ListSpending(uid)
	if entries[0].Category != "New" || entries[1].Date != "2024-01-02" {
		t.Fatalf("expected date desc ordering: %+v", entries)
	}
}

func TestSpendingAllowsNegativeAmount(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "s@example.com")
	if err := s.AddSpending(uid, SpendingInput{Amount: -500, Category: "Refund"}); err != nil {
		t.Fatalf("negative amounts should be accepted: %v", err)
	}
}

func TestDeleteSpending(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "s@example.com")
	s.AddSpending(uid, SpendingInput{Amount: 100, Category: "Food"})
	entries, _ := s.ListSpending(uid)

	s.DeleteSpending(entries[0].ID)
	entries, _ = s.ListSpending(uid)
	if len(entries) != 0 {
		t.Fatal("spending entry should be deleted")
	}
}

func TestSpendingGoalUpsert(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "g@example.com")

	if err := s.SetSpendingGoal(uid, "Food", 20000); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSpendingGoal(uid, "Food", 30000); err != nil {
		t.Fatal(err)
	}
	s.SetSpendingGoal(uid, "Books", 5000)

	goals, err := s.ListSpendingGoals(uid)
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(goals))
	}
	if goals[0].Category != "Books" || goals[1].MonthlyLimit != 30000 {
		t.Fatalf("unexpected goals: %+v", goals)
	}

	s.DeleteSpendingGoal(goals[0].ID)
	goals, _ = s.ListSpendingGoals(uid)
	if len(goals) != 1 {
		t.Fatal("goal should be deleted")
	}
}

// ============================================================
// Health
// ============================================================

func countHealthRows(t *testing.T, s *Store, uid, date string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM health_metrics WHERE user_id = ? AND date = ?`, uid, date).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestHealthNoRow(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "h@example.com")
	h, err := s.TodayHealth(uid)
	if err != nil {
		t.Fatal(err)
	}
	if h != nil {
		t.Fatal("expected nil metric when none recorded")
	}
}

func TestSetHealthMetricCreatesSingleField(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "h@example.com")
	today := Today()

	if err := s.SetHealthMetric(uid, today, HealthSteps, 4200); err != nil {
		t.Fatal(err)
	}
	if n := countHealthRows(t, s, uid, today); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
	h, _ := s.TodayHealth(uid)
	if h.Steps == nil || *h.Steps != 4200 {
		t.Fatalf("steps not stored: %+v", h)
	}
	if h.SleepHours != nil || h.WaterGlasses != nil {
		t.Fatal("other fields should stay null")
	}
}

func TestSetHealthMetricPatchesSameRow(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "h@example.com")
	today := Today()

	s.SetHealthMetric(uid, today, HealthSteps, 1000)
	first, _ := s.TodayHealth(uid)
	s.SetHealthMetric(uid, today, HealthSleep, 7.5)
	s.SetHealthMetric(uid, today, HealthWater, 6)
	s.SetHealthMetric(uid, today, HealthSteps, 8000)

	if n := countHealthRows(t, s, uid, today); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
	h, _ := s.TodayHealth(uid)
	if h.ID != first.ID {
		t.Fatal("row id should be stable across patches")
	}
	if *h.Steps != 8000 || *h.SleepHours != 7.5 || *h.WaterGlasses != 6 {
		t.Fatalf("unexpected metric: steps=%v sleep=%v water=%v", *h.Steps, *h.SleepHours, *h.WaterGlasses)
	}
}

func TestSetHealthMetricConcurrentFields(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "h@example.com")
	today := Today()

	var wg sync.WaitGroup
	for _, f := range HealthFields {
		wg.Add(1)
		go func(f HealthField) {
			defer wg.Done()
			if err := s.SetHealthMetric(uid, today, f, 3); err != nil {
				t.Error(err)
			}
		}(f)
	}
	wg.Wait()

	if n := countHealthRows(t, s, uid, today); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
	h, _ := s.TodayHealth(uid)
	if h.Steps == nil || h.SleepHours == nil || h.WaterGlasses == nil {
		t.Fatalf("every field should survive: %+v", h)
	}
}

func TestSetHealthMetricUnknownField(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "h@example.com")
	if err := s.SetHealthMetric(uid, Today(), HealthField("weight"), 70); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestSetHealthMetricFractionalSteps(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "h@example.com")
	today := Today()

	if err := s.SetHealthMetric(uid, today, HealthSteps, 8000.7); err == nil {
		t.Fatal("expected error for fractional steps")
	}
	if n := countHealthRows(t, s, uid, today); n != 0 {
		t.Fatalf("rejected write should not create a row, got %d", n)
	}
	// Sleep is fractional by nature.
	if err := s.SetHealthMetric(uid, today, HealthSleep, 7.5); err != nil {
		t.Fatal(err)
	}
}

func TestListHealthMetrics(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "h@example.com")
	s.SetHealthMetric(uid, "2024-03-01", HealthSteps, 1)
	s.SetHealthMetric(uid, "2024-03-03", HealthSteps, 3)
	s.SetHealthMetric(uid, "2024-03-09", HealthSteps, 9)

	list, err := s.ListHealthMetrics(uid, "2024-03-01", "2024-03-08")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Date != "2024-03-01" || list[1].Date != "2024-03-03" {
		t.Fatalf("unexpected range: %+v", list)
	}
}

// ============================================================
// User settings
// ============================================================

func TestGetUserSettingsMissing(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "u@example.com")
	u, err := s.GetUserSettings(uid)
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Fatal("expected nil settings before first access")
	}
}

func TestEnsureUserSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "u@example.com")

	u, err := s.EnsureUserSettings(uid)
	if err != nil {
		t.Fatal(err)
	}
	if !u.AnimeTrackerEnabled || !u.DailyInspirationEnabled || !u.SpendingTrackerEnabled ||
		!u.TodoListEnabled || !u.HealthTrackerEnabled || !u.MiniGamesEnabled {
		t.Fatalf("all flags should default true: %+v", u)
	}
	if len(u.Layout) != 0 || u.PomodoroMinutes != 25 {
		t.Fatalf("unexpected defaults: %+v", u)
	}
}

func TestEnsureUserSettingsSingleRow(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "u@example.com")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.EnsureUserSettings(uid); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	var n int
	s.db.QueryRow(`SELECT COUNT(*) FROM user_settings WHERE user_id = ?`, uid).Scan(&n)
	if n != 1 {
		t.Fatalf("expected exactly 1 settings row, got %d", n)
	}
}

func TestEnsureUserSettingsKeepsExisting(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "u@example.com")
	s.EnsureUserSettings(uid)

	off := false
	s.UpdateUserSettings(uid, SettingsPatch{AnimeTrackerEnabled: &off})

	u, _ := s.EnsureUserSettings(uid)
	if u.AnimeTrackerEnabled {
		t.Fatal("ensure must not reset an existing row")
	}
}

func TestUpdateUserSettings(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "u@example.com")
	s.EnsureUserSettings(uid)

	off, mins := false, 15
	err := s.UpdateUserSettings(uid, SettingsPatch{
		TodoListEnabled: &off,
		Layout:          []string{WidgetTodo, WidgetAnime},
		PomodoroMinutes: &mins,
	})
	if err != nil {
		t.Fatal(err)
	}
	u, _ := s.GetUserSettings(uid)
	if u.TodoListEnabled || !u.AnimeTrackerEnabled {
		t.Fatalf("unexpected flags: %+v", u)
	}
	if len(u.Layout) != 2 || u.Layout[0] != WidgetTodo {
		t.Fatalf("layout not stored: %v", u.Layout)
	}
	if u.PomodoroMinutes != 15 {
		t.Fatal("pomodoro minutes not stored")
	}
	if u.Enabled(WidgetTodo) || !u.Enabled(WidgetHealth) || u.Enabled("clock") {
		t.Fatal("Enabled() disagrees with flags")
	}

	zero := 0
	if err := s.UpdateUserSettings(uid, SettingsPatch{PomodoroMinutes: &zero}); err == nil {
		t.Fatal("expected error for non-positive minutes")
	}
}

func TestMeta(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetMeta("secret"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	s.SetMeta("secret", "a")
	s.SetMeta("secret", "b")
	v, err := s.GetMeta("secret")
	if err != nil || v != "b" {
		t.Fatalf("GetMeta = %q, %v", v, err)
	}
}

// ============================================================
// Pomodoro
// ============================================================

func TestRecordAndCountPomodoros(t *testing.T) {
	s := newTestStore(t)
	uid := newTestUser(t, s, "p@example.com")
	other := newTestUser(t, s, "q@example.com")

	s.RecordPomodoro(uid, 25*time.Minute)
	s.RecordPomodoro(uid, 5*time.Minute)
	s.RecordPomodoro(other, 25*time.Minute)

	now := time.Now()
	count, total, err := s.CountPomodoros(uid, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 || total != 30*time.Minute {
		t.Fatalf("got count=%d total=%v", count, total)
	}

	list, _ := s.ListPomodoros(uid, 1)
	if len(list) != 1 || list[0].Duration != 300 {
		t.Fatalf("expected latest session first: %+v", list)
	}
}
