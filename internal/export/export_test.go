package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/hibidash/internal/store"
)

func sampleStore(t *testing.T) (*store.Store, *store.User) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	u, err := s.CreateUser("export@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}
	s.AddAnime(u.ID, "Cowboy Bebop")
	s.AddTodo(u.ID, "Water plants", store.PriorityHigh)
	s.AddSpending(u.ID, store.SpendingInput{Amount: 1250, Category: "Food", Description: "ramen, extra egg"})
	s.AddSpending(u.ID, store.SpendingInput{Amount: 725, Category: "Transport"})
	s.SetSpendingGoal(u.ID, "Food", 20000)
	s.SetHealthMetric(u.ID, store.Today(), store.HealthSteps, 6000)
	s.RecordPomodoro(u.ID, 25*time.Minute)
	s.RecordPomodoro(u.ID, 15*time.Minute)
	return s, u
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	s, u := sampleStore(t)
	entries, _ := s.ListSpending(u.ID)
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(entries, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "ID" || records[0][4] != "Amount" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	var found bool
	for _, r := range records[1:] {
		if r[2] == "Food" {
			found = true
			if r[3] != "ramen, extra egg" {
				t.Fatalf("description with comma not preserved: %q", r[3])
			}
			if r[4] != "$12.50" || r[5] != "1250" {
				t.Fatalf("unexpected amount columns: %v", r)
			}
		}
	}
	if !found {
		t.Fatal("Food row missing")
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if lines := strings.Count(string(data), "\n"); lines != 1 {
		t.Fatalf("expected only a header line, got %d lines", lines)
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, filepath.Join(t.TempDir(), "missing", "x.csv")); err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

// ============================================================
// Snapshot
// ============================================================

func TestCollect(t *testing.T) {
	s, u := sampleStore(t)
	snap, err := Collect(s, u)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Email != "export@example.com" {
		t.Fatalf("unexpected email %q", snap.Email)
	}
	if len(snap.Anime) != 1 || len(snap.Todos) != 1 || len(snap.Spending) != 2 || len(snap.Goals) != 1 || len(snap.Health) != 1 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
	if snap.Totals.Spending != 19.75 {
		t.Fatalf("expected total 19.75, got %v", snap.Totals.Spending)
	}
	if snap.Totals.TodosOpen != 1 {
		t.Fatalf("expected 1 open todo, got %d", snap.Totals.TodosOpen)
	}
	if len(snap.Settings.Enabled) != 6 || snap.Settings.PomodoroMinutes != 25 {
		t.Fatalf("unexpected settings: %+v", snap.Settings)
	}
	if len(snap.Pomodoros) != 2 || snap.Totals.FocusMinutes != 40 {
		t.Fatalf("unexpected pomodoros: %+v total %d", snap.Pomodoros, snap.Totals.FocusMinutes)
	}
	if snap.Pomodoros[0].Minutes != 15 {
		t.Fatalf("expected newest session first, got %+v", snap.Pomodoros)
	}
}

func TestToJSON(t *testing.T) {
	s, u := sampleStore(t)
	snap, _ := Collect(s, u)
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(snap, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out["email"] != "export@example.com" {
		t.Fatalf("email missing: %v", out["email"])
	}
	if _, ok := out["spending_goals"]; !ok {
		t.Fatal("spending_goals key missing")
	}
}

func TestToYAML(t *testing.T) {
	s, u := sampleStore(t)
	snap, _ := Collect(s, u)
	path := filepath.Join(t.TempDir(), "test.yaml")

	if err := ToYAML(snap, path); err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	data, _ := os.ReadFile(path)

	var out struct {
		Email  string `yaml:"email"`
		Totals struct {
			Spending float64 `yaml:"spending"`
		} `yaml:"totals"`
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if out.Email != "export@example.com" || out.Totals.Spending != 19.75 {
		t.Fatalf("unexpected yaml content: %+v", out)
	}
}

// ============================================================
// Formats
// ============================================================

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"csv": FormatCSV, "JSON": FormatJSON, "yml": FormatYAML, " yaml ": FormatYAML}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
}

func TestFilename(t *testing.T) {
	day := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	if got := Filename(FormatCSV, day); got != "hibidash-spending-2024-05-06.csv" {
		t.Fatalf("got %q", got)
	}
	if got := Filename(FormatYAML, day); got != "hibidash-export-2024-05-06.yaml" {
		t.Fatalf("got %q", got)
	}
}

func TestWrite(t *testing.T) {
	s, u := sampleStore(t)
	dir := t.TempDir()
	for _, f := range Formats {
		path, err := Write(s, u, f, dir)
		if err != nil {
			t.Fatalf("Write %s: %v", f, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s not written: %v", path, err)
		}
	}
}
