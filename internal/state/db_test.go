package state

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/learnlab/internal/logging"
	"github.com/ShayCichocki/learnlab/pkg/models"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "learnlab.db")
}

// setupTestDB opens a migrated database that is closed when the test ends.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMigrated(tempDBPath(t))
	if err != nil {
		t.Fatalf("OpenMigrated failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func schemaVersions(t *testing.T, db *DB) []int {
	t.Helper()
	rows, err := db.Query("SELECT version FROM schema_version ORDER BY version")
	if err != nil {
		t.Fatalf("query schema_version: %v", err)
	}
	defer rows.Close()
	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			t.Fatal(err)
		}
		versions = append(versions, v)
	}
	return versions
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain file", filepath.Join(dir, "plain.db"), false},
		{"nested directories", filepath.Join(dir, "data", "learnlab", "nested.db"), false},
		{"unwritable parent", "/proc/learnlab/learnlab.db", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Open(tt.path)
			if tt.wantErr {
				if err == nil {
					db.Close()
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer db.Close()
			if db.Path() != tt.path {
				t.Errorf("Path() = %q, want %q", db.Path(), tt.path)
			}
			if _, err := os.Stat(tt.path); err != nil {
				t.Errorf("database file missing: %v", err)
			}
		})
	}
}

func TestMigrate_FreshDatabase(t *testing.T) {
	db := setupTestDB(t)

	for _, name := range []string{"runs", "trials", "idx_runs_status", "idx_trials_run_id", "idx_trials_example"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = ?", name).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("schema object %s missing", name)
		}
	}

	// Re-running applies nothing new.
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	if got := schemaVersions(t, db); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("schema versions = %v, want [1 2]", got)
	}
}

func TestMigrate_UpgradesRunsOnlyDatabase(t *testing.T) {
	path := tempDBPath(t)
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// A database written before trials were recorded.
	for _, stmt := range []string{
		"CREATE TABLE schema_version (version INTEGER PRIMARY KEY, applied_at DATETIME DEFAULT CURRENT_TIMESTAMP)",
		migrationV1Runs,
		"INSERT INTO schema_version (version) VALUES (1)",
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed v1 schema: %v", err)
		}
	}
	if err := db.CreateRun(newTestRun("legacy", time.Now())); err != nil {
		t.Fatal(err)
	}

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if got := schemaVersions(t, db); len(got) != 2 {
		t.Errorf("schema versions = %v, want [1 2]", got)
	}
	if err := db.InsertTrial(context.Background(), "legacy", models.TrialResult{Learner: "lstar", Role: models.TrialRoleLearner}); err != nil {
		t.Errorf("legacy run should accept trials after upgrade: %v", err)
	}
}

func TestTransaction(t *testing.T) {
	errAbort := errors.New("abort")
	tests := []struct {
		name       string
		fail       error
		wantTrials int
	}{
		{"commit", nil, 2},
		{"rollback", errAbort, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			if err := db.CreateRun(newTestRun("run-1", time.Now())); err != nil {
				t.Fatal(err)
			}

			err := db.Transaction(func(tx *sql.Tx) error {
				for trial := range 2 {
					if _, err := tx.Exec(`
						INSERT INTO trials (run_id, example, learner, role, trial, recorded_at)
						VALUES ('run-1', 'even-a', 'dt', 'learner', ?, ?)
					`, trial, formatTime(time.Now())); err != nil {
						return err
					}
				}
				return tt.fail
			})
			if !errors.Is(err, tt.fail) {
				t.Fatalf("Transaction error = %v, want %v", err, tt.fail)
			}

			var n int
			if err := db.QueryRow("SELECT COUNT(*) FROM trials WHERE run_id = 'run-1'").Scan(&n); err != nil {
				t.Fatal(err)
			}
			if n != tt.wantTrials {
				t.Errorf("trials = %d, want %d", n, tt.wantTrials)
			}
		})
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := tempDBPath(t)
	db, err := OpenMigrated(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.CreateRun(newTestRun("run-1", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := db.CreateRun(newTestRun("run-2", time.Now())); err == nil {
		t.Error("closed database accepted a run")
	}

	db, err = OpenMigrated(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	r, err := db.GetRun("run-1")
	if err != nil || r == nil {
		t.Fatalf("GetRun after reopen = %v, %v", r, err)
	}
	if r.Seed != 42 || len(r.Learners) != 3 {
		t.Errorf("reopened run = %+v", r)
	}
}

func TestDefaultDBPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	tests := []struct {
		xdg  string
		want string
	}{
		{"/custom/data", "/custom/data/learnlab/learnlab.db"},
		{"", filepath.Join(home, ".local", "share", "learnlab", "learnlab.db")},
	}
	for _, tt := range tests {
		t.Setenv("XDG_DATA_HOME", tt.xdg)
		if got := DefaultDBPath(); got != tt.want {
			t.Errorf("DefaultDBPath() with XDG_DATA_HOME=%q = %q, want %q", tt.xdg, got, tt.want)
		}
	}
}

func TestOpenMigrated_EmptyPathUsesDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	db, err := OpenMigrated("")
	if err != nil {
		t.Fatalf("OpenMigrated failed: %v", err)
	}
	defer db.Close()
	if db.Path() != DefaultDBPath() {
		t.Errorf("Path() = %q, want %q", db.Path(), DefaultDBPath())
	}
}

func TestPurgeOldRuns_LogsCount(t *testing.T) {
	var buf bytes.Buffer
	logging.SetDefault(logging.NewWriterLogger(&buf))
	t.Cleanup(func() { logging.SetDefault(nil) })

	db := setupTestDB(t)
	if err := db.CreateRun(newTestRun("old", time.Now().Add(-72*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if _, err := db.PurgeOldRuns(time.Hour); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "[state] purged 1 runs") {
		t.Errorf("debug log = %q", buf.String())
	}
}

func TestParseNullableTime(t *testing.T) {
	tests := []struct {
		name string
		in   sql.NullString
		want bool
	}{
		{"set", sql.NullString{String: "2024-03-01T12:00:00Z", Valid: true}, true},
		{"null", sql.NullString{}, false},
		{"garbage", sql.NullString{String: "yesterday", Valid: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseNullableTime(tt.in); (got != nil) != tt.want {
				t.Errorf("parseNullableTime(%+v) = %v", tt.in, got)
			}
		})
	}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	got, err := parseTime(formatTime(at))
	if err != nil || !got.Equal(at) {
		t.Errorf("parseTime(formatTime) = %v, %v, want %v", got, err, at)
	}
}
