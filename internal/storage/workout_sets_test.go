package storage

import (
	"os"
	"strings"
	"testing"
	"time"
)

// TestPlaceholders verifies the numbered parameter groups used by batch inserts.
func TestPlaceholders(t *testing.T) {
	tests := []struct {
		base, n int
		want    string
	}{
		{0, 3, "($1,$2,$3)"},
		{12, 2, "($13,$14)"},
		{0, 1, "($1)"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.base, tt.n); got != tt.want {
			t.Errorf("placeholders(%d, %d) = %q, want %q", tt.base, tt.n, got, tt.want)
		}
	}
}

// TestBucketDays verifies timestamps collapse to distinct local calendar
// days, sorted ascending, honoring the location across midnight.
func TestBucketDays(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	times := []time.Time{
		time.Date(2024, 7, 10, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 3, 2, 30, 0, 0, time.UTC), // July 2 in EST
		time.Date(2024, 7, 10, 19, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC),
	}

	got := BucketDays(times, est)
	want := []string{"2024-07-02", "2024-07-03", "2024-07-10"}
	if len(got) != len(want) {
		t.Fatalf("BucketDays = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("day[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if got := BucketDays(nil, nil); len(got) != 0 {
		t.Errorf("BucketDays(nil) = %v, want empty", got)
	}
}

// TestTruncInterval verifies bucket names map to date_trunc fields.
func TestTruncInterval(t *testing.T) {
	tests := map[string]string{
		"1 day":   "day",
		"weekly":  "week",
		"1 week":  "week",
		"1 month": "month",
		"":        "month",
		"decade":  "month",
	}
	for in, want := range tests {
		if got := truncInterval(in); got != want {
			t.Errorf("truncInterval(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestMigrationsCoverQueries verifies the schema defines every table and
// column the repository queries rely on.
func TestMigrationsCoverQueries(t *testing.T) {
	up, err := os.ReadFile("../../migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("reading migration: %v", err)
	}
	schema := string(up)
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE TABLE IF NOT EXISTS workout_sets",
		"CREATE TABLE IF NOT EXISTS submission_logs",
		"set_label", "is_warmup", "completed_at", "sets_inserted",
		"PRIMARY KEY (user_id, workout_id, exercise_number, set_index)",
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("migration missing %q", want)
		}
	}

	down, err := os.ReadFile("../../migrations/000001_init.down.sql")
	if err != nil {
		t.Fatalf("reading down migration: %v", err)
	}
	for _, table := range []string{"users", "workout_sets", "submission_logs"} {
		if !strings.Contains(string(down), "DROP TABLE IF EXISTS "+table) {
			t.Errorf("down migration does not drop %s", table)
		}
	}
}
