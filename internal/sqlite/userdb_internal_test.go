package sqlite

import (
	"database/sql"
	"errors"
	"os"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/liftplan/internal/testhelpers"
)

func TestDatabase_ExportUser(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		userID         int
		setupSchema    string
		setupData      []string
		expectedCounts map[string]int
		wantErr        error
	}{
		{
			name:   "simple user export",
			userID: 1,
			setupSchema: `
				CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
				CREATE TABLE workouts (id INTEGER PRIMARY KEY, user_id INTEGER, name TEXT, FOREIGN KEY (user_id) REFERENCES users(id));
			`,
			setupData: []string{
				"INSERT INTO users (id, name) VALUES (1, 'John Doe')",
				"INSERT INTO users (id, name) VALUES (2, 'Jane Smith')",
				"INSERT INTO workouts (id, user_id, name) VALUES (1, 1, 'Morning Run')",
				"INSERT INTO workouts (id, user_id, name) VALUES (2, 1, 'Evening Gym')",
				"INSERT INTO workouts (id, user_id, name) VALUES (3, 2, 'Yoga Session')",
			},
			expectedCounts: map[string]int{"users": 1, "workouts": 2},
			wantErr:        nil,
		},
		{
			name:   "user with no data",
			userID: 999,
			setupSchema: `
				CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
				CREATE TABLE workouts (id INTEGER PRIMARY KEY, user_id INTEGER, name TEXT, FOREIGN KEY (user_id) REFERENCES users(id));
			`,
			setupData: []string{
				"INSERT INTO users (id, name) VALUES (1, 'John Doe')",
				"INSERT INTO workouts (id, user_id, name) VALUES (1, 1, 'Morning Run')",
			},
			expectedCounts: map[string]int{"users": 0, "workouts": 0},
			wantErr:        nil,
		},
		{
			name:   "tables without owner are not exported",
			userID: 1,
			setupSchema: `
				CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
				CREATE TABLE sessions (token TEXT PRIMARY KEY, data BLOB NOT NULL, expiry REAL NOT NULL);
			`,
			setupData: []string{
				"INSERT INTO users (id, name) VALUES (1, 'John Doe')",
				"INSERT INTO sessions (token, data, expiry) VALUES ('abc', x'00', 1)",
			},
			expectedCounts: map[string]int{"users": 1},
			wantErr:        nil,
		},
		{
			name:   "no users table",
			userID: 1,
			setupSchema: `
				CREATE TABLE workouts (id INTEGER PRIMARY KEY, user_id INTEGER, name TEXT);
			`,
			setupData: []string{
				"INSERT INTO workouts (id, user_id, name) VALUES (1, 1, 'Morning Run')",
			},
			expectedCounts: nil,
			wantErr:        errNoUsersTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := t.Context()
			logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

			db, err := connect(ctx, ":memory:", logger)
			if err != nil {
				t.Fatalf("Failed to connect to database: %v", err)
			}
			t.Cleanup(func() {
				if err = db.Close(); err != nil {
					t.Errorf("Failed to close database: %v", err)
				}
			})

			if _, err = db.ReadWrite.ExecContext(ctx, tt.setupSchema); err != nil {
				t.Fatalf("Failed to create schema: %v", err)
			}
			for _, dataSQL := range tt.setupData {
				if _, err = db.ReadWrite.ExecContext(ctx, dataSQL); err != nil {
					t.Fatalf("Failed to insert test data: %v", err)
				}
			}

			dbPath, err := db.ExportUser(ctx, tt.userID, t.TempDir())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ExportUser() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if _, err = os.Stat(dbPath); err != nil {
				t.Fatalf("Exported database file: %v", err)
			}
			if got := exportedCounts(t, dbPath); !cmp.Equal(got, tt.expectedCounts) {
				t.Errorf("exported row counts mismatch (-want +got):\n%s", cmp.Diff(tt.expectedCounts, got))
			}
		})
	}
}

func TestDatabase_ExportUser_schema(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	db, err := NewDatabase(ctx, ":memory:", testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, q := range []string{
		"INSERT INTO users (id, display_name) VALUES (1, 'a'), (2, 'b')",
		"INSERT INTO schedule_overrides (user_id, date, workout_id) VALUES (1, '2025-01-06', 'rest'), (2, '2025-01-06', 'push')",
		"INSERT INTO bodyweight_entries (user_id, date, weight_kg) VALUES (1, '2025-01-06', 80.5)",
		"INSERT INTO sessions (token, data, expiry) VALUES ('t', x'00', 1)",
	} {
		if _, err = db.ReadWrite.ExecContext(ctx, q); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}

	dbPath, err := db.ExportUser(ctx, 1, t.TempDir())
	if err != nil {
		t.Fatalf("ExportUser: %v", err)
	}
	got := exportedCounts(t, dbPath)
	if got["users"] != 1 || got["schedule_overrides"] != 1 || got["bodyweight_entries"] != 1 {
		t.Errorf("unexpected counts %v", got)
	}
	if _, ok := got["sessions"]; ok {
		t.Errorf("sessions table must not be exported")
	}

	// The write connection is usable again after the export.
	if _, err = db.ReadWrite.ExecContext(ctx,
		"INSERT INTO schedule_overrides (user_id, date, workout_id) VALUES (1, '2025-01-07', 'pull')"); err != nil {
		t.Errorf("write after export: %v", err)
	}
}

func exportedCounts(t *testing.T, dbPath string) map[string]int {
	t.Helper()
	exported, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open exported database: %v", err)
	}
	defer exported.Close()

	ctx := t.Context()
	tables, err := queryRows(ctx, exported, scanString,
		"SELECT name FROM sqlite_schema WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}
	slices.Sort(tables)

	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		if err = exported.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		counts[table] = n
	}
	return counts
}
