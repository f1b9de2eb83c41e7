package query

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/hibidash/internal/store"
)

func setup(t *testing.T) (*Client, *store.Store, string) {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	u, err := s.CreateUser("hooks@example.com", "hash")
	require.NoError(t, err)
	return NewClient(nil), s, u.ID
}

// countingAnime wraps a store and counts list calls; failing makes writes error.
type countingAnime struct {
	AnimeStore
	lists   int
	failing bool
}

func (c *countingAnime) ListAnime(userID string) ([]store.AnimeEntry, error) {
	c.lists++
	return c.AnimeStore.ListAnime(userID)
}

func (c *countingAnime) AddAnime(userID, title string) error {
	if c.failing {
		return errBackend
	}
	return c.AnimeStore.AddAnime(userID, title)
}

func TestAnimeAddInvalidatesList(t *testing.T) {
	c, s, uid := setup(t)
	db := &countingAnime{AnimeStore: s}
	h := NewAnime(c, db, uid)

	list, err := h.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, h.Add("Mushishi"))
	list, err = h.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, store.AnimePlanToWatch, list[0].Status)
	assert.Equal(t, 12, list[0].TotalEpisodes)

	_, err = h.List()
	require.NoError(t, err)
	assert.Equal(t, 2, db.lists, "cached read should not hit the backend")
}

func TestAnimeFailedWriteKeepsCache(t *testing.T) {
	c, s, uid := setup(t)
	db := &countingAnime{AnimeStore: s}
	h := NewAnime(c, db, uid)

	_, err := h.List()
	require.NoError(t, err)
	before := c.Version(h.Key())

	db.failing = true
	assert.ErrorIs(t, h.Add("Nope"), errBackend)
	assert.Equal(t, before, c.Version(h.Key()))

	_, err = h.List()
	require.NoError(t, err)
	assert.Equal(t, 1, db.lists)
}

func TestAnimeWithoutUser(t *testing.T) {
	c, s, _ := setup(t)
	db := &countingAnime{AnimeStore: s}
	_, err := NewAnime(c, db, "").List()
	assert.ErrorIs(t, err, ErrNoUser)
	assert.Zero(t, db.lists)
}

func TestTodosToggleTwice(t *testing.T) {
	c, s, uid := setup(t)
	h := NewTodos(c, s, uid)
	require.NoError(t, h.Add("Write tests", ""))

	items, err := h.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, store.PriorityMedium, item.Priority)

	require.NoError(t, h.Toggle(item.ID, !item.Completed))
	items, _ = h.List()
	require.NoError(t, h.Toggle(item.ID, !items[0].Completed))
	items, _ = h.List()
	assert.Equal(t, item.Completed, items[0].Completed)

	require.NoError(t, h.Delete(item.ID))
	items, _ = h.List()
	assert.Empty(t, items)
}

func TestSpendingTotalFromCache(t *testing.T) {
	c, s, uid := setup(t)
	h := NewSpending(c, s, uid)

	require.NoError(t, h.Add(store.SpendingInput{Amount: 1250, Category: "Food"}))
	require.NoError(t, h.Add(store.SpendingInput{Amount: 725, Category: "Transport"}))

	assert.Zero(t, h.Total(), "derived values follow the last fetch")

	_, err := h.List()
	require.NoError(t, err)
	assert.Equal(t, 19.75, h.Total().Float())

	by := h.ByCategory()
	assert.Equal(t, store.Money(1250), by["Food"])
	assert.Equal(t, store.Money(725), by["Transport"])
}

func TestSpendingMonthByCategory(t *testing.T) {
	c, s, uid := setup(t)
	h := NewSpending(c, s, uid)
	march := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, h.Add(store.SpendingInput{Amount: 500, Category: "Food", Date: march}))
	require.NoError(t, h.Add(store.SpendingInput{Amount: 300, Category: "Food", Date: april}))
	_, err := h.List()
	require.NoError(t, err)

	m := h.MonthByCategory(march)
	assert.Equal(t, store.Money(500), m["Food"])
}

func TestSpendingGoals(t *testing.T) {
	c, s, uid := setup(t)
	h := NewSpending(c, s, uid)

	require.NoError(t, h.SetGoal("Food", 20000))
	require.NoError(t, h.SetGoal("Food", 25000))
	goals, err := h.Goals()
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, store.Money(25000), goals[0].MonthlyLimit)
}

func TestHealthSetPatchesSingleRow(t *testing.T) {
	c, s, uid := setup(t)
	h := NewHealth(c, s, uid)

	m, err := h.Today()
	require.NoError(t, err)
	assert.Nil(t, m)

	require.NoError(t, h.Set(store.HealthSteps, 5000))
	m, err = h.Today()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, int64(5000), *m.Steps)
	assert.Nil(t, m.SleepHours)

	require.NoError(t, h.Set(store.HealthWater, 8))
	m2, err := h.Today()
	require.NoError(t, err)
	assert.Equal(t, m.ID, m2.ID)
	assert.Equal(t, int64(5000), *m2.Steps)
	assert.Equal(t, 8.0, *m2.WaterGlasses)
}

func TestHealthRollsOverAtMidnight(t *testing.T) {
	c, s, uid := setup(t)
	h := NewHealth(c, s, uid)
	h.today = func() string { return "2026-10-14" }

	require.NoError(t, h.Set(store.HealthWater, 8))
	m, err := h.Today()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "2026-10-14", m.Date)

	h.today = func() string { return "2026-10-15" }
	assert.NotEqual(t, Key{Kind: KindHealth, UserID: uid, Period: "2026-10-14"}, h.Key())

	m, err = h.Today()
	require.NoError(t, err)
	assert.Nil(t, m, "yesterday's row served after the date changed")

	require.NoError(t, h.Set(store.HealthWater, 1))
	m, err = h.Today()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "2026-10-15", m.Date)
	assert.Equal(t, 1.0, *m.WaterGlasses)

	rows, err := h.Range("2026-10-14", "2026-10-16")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 8.0, *rows[0].WaterGlasses)
}

func TestSettingsGetCreatesOneRow(t *testing.T) {
	c, s, uid := setup(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate clients so every read reaches the backend.
			h := NewSettings(NewClient(nil), s, uid)
			u, err := h.Get()
			assert.NoError(t, err)
			if assert.NotNil(t, u) {
				assert.True(t, u.MiniGamesEnabled)
			}
		}()
	}
	wg.Wait()

	h := NewSettings(c, s, uid)
	u, err := h.Get()
	require.NoError(t, err)
	first := u.ID
	u, err = h.Get()
	require.NoError(t, err)
	assert.Equal(t, first, u.ID)

	off := false
	require.NoError(t, h.Update(store.SettingsPatch{HealthTrackerEnabled: &off}))
	u, err = h.Get()
	require.NoError(t, err)
	assert.False(t, u.HealthTrackerEnabled)
	assert.Equal(t, first, u.ID)
}

func TestPomodoroStats(t *testing.T) {
	c, s, uid := setup(t)
	h := NewPomodoro(c, s, uid)

	stats, err := h.Today()
	require.NoError(t, err)
	assert.Zero(t, stats.Count)

	require.NoError(t, h.Record(25*time.Minute))
	stats, err = h.Today()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 25*time.Minute, stats.Total)
}

func TestPomodoroRollsOverAtMidnight(t *testing.T) {
	c, s, uid := setup(t)
	h := NewPomodoro(c, s, uid)

	require.NoError(t, h.Record(25*time.Minute))
	stats, err := h.Today()
	require.NoError(t, err)
	require.Equal(t, 1, stats.Count)
	before := h.Key()

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	h.today = func() string { return tomorrow }
	assert.NotEqual(t, before, h.Key())

	stats, err = h.Today()
	require.NoError(t, err)
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.Total)
}
