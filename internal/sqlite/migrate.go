package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"
)

type schemaType string

const (
	schemaTypeTable   schemaType = "table"
	schemaTypeTrigger schemaType = "trigger"
	schemaTypeIndex   schemaType = "index"
)

// schemaDiff is the difference between the live schema and the attached schemaTarget for one schema type.
type schemaDiff struct {
	deleted []string
	created []string
	changed []changedSchema
}

type changedSchema struct {
	name    string
	liveSQL string
	newSQL  string
}

// migrateTo makes the live schema equal to schemaDefinition.
//
// The migration is declarative: schemaDefinition is materialised in a temporary database which is diffed against
// the live one. Deleted tables are dropped, new ones created and changed ones rebuilt with the 12-step procedure
// from https://www.sqlite.org/lang_altertable.html#otheralter. Triggers and indexes are synchronised afterwards.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) error {
	start := time.Now()

	detach, err := db.attachSchemaTarget(ctx, schemaDefinition)
	if err != nil {
		return fmt.Errorf("attach schema target: %w", err)
	}
	defer detach()

	// Step 1: Disable foreign key validation temporarily.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign key validation: %w", err)
	}
	// Step 12: Re-enable foreign key validation. Continuing without it risks silent corruption.
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "exit to avoid data corruption",
				slog.Any("error", fmt.Errorf("re-enable foreign key validation: %w", fkErr)))
			if killErr := syscall.Kill(syscall.Getpid(), syscall.SIGINT); killErr != nil {
				os.Exit(1)
			}
		}
	}()

	// Step 2: Start transaction.
	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer db.rollback(ctx, tx)

	// Steps 3-7.
	if err = db.migrateTables(ctx, tx); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}

	// Step 8: Recreate indexes and triggers.
	for _, typ := range []schemaType{schemaTypeTrigger, schemaTypeIndex} {
		if err = db.migrateSchema(ctx, tx, typ); err != nil {
			return fmt.Errorf("migrate %s: %w", typ, err)
		}
	}

	// Step 9 is skipped because there are no views.
	// Step 10: Check foreign key constraints.
	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}

	// Step 11: Commit transaction from step 2.
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

// attachSchemaTarget attaches an in-memory database initialised with schemaDefinition as schemaTarget. The returned
// function detaches it.
func (db *Database) attachSchemaTarget(ctx context.Context, schemaDefinition string) (func(), error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	target, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open schema target: %w", err)
	}
	// The shared cache keeps the memory database alive while the live connection has it attached.
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target", slog.Any("error", closeErr))
		}
	}()
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, fmt.Errorf("create schema target: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", dsn); err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach schema target", slog.Any("error", detachErr))
		}
	}, nil
}

func (db *Database) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
			slog.Any("error", fmt.Errorf("rollback transaction: %w", err)))
	}
}

func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	// Step 3: Remember the schema.
	diff, err := db.diffSchema(ctx, tx, schemaTypeTable)
	if err != nil {
		return err
	}

	for _, table := range diff.deleted {
		if err = db.exec(ctx, tx, "dropping table", fmt.Sprintf("DROP TABLE %s", table)); err != nil {
			return err
		}
	}
	for _, createSQL := range diff.created {
		if err = db.exec(ctx, tx, "creating table", createSQL); err != nil {
			return err
		}
	}

	for _, table := range diff.changed {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
			slog.String("table", table.name),
			slog.String("live_sql", table.liveSQL),
			slog.String("new_sql", table.newSQL))

		// Step 4: Create the new table under a temporary name.
		tempName := table.name + "_migration_temp"
		if err = db.exec(ctx, tx, "creating temporary table",
			strings.Replace(table.newSQL, table.name, tempName, 1)); err != nil {
			return err
		}

		// Step 5: Copy the columns the tables have in common. Quoting handles columns named after keywords.
		var columns []string
		if columns, err = queryRows(ctx, tx, scanString, `SELECT '"' || target.name || '"'
FROM PRAGMA_TABLE_INFO(:table_name) AS live
JOIN PRAGMA_TABLE_INFO(:table_name, 'schemaTarget') AS target ON target.name = live.name`,
			sql.Named("table_name", table.name)); err != nil {
			return fmt.Errorf("query common columns of %s: %w", table.name, err)
		}
		common := strings.Join(columns, ", ")
		if err = db.exec(ctx, tx, "copying data", fmt.Sprintf( //nolint:gosec // names come from sqlite_schema.
			"INSERT INTO %s (%s) SELECT %s FROM %s", tempName, common, common, table.name)); err != nil {
			return err
		}

		// Step 6: Drop the old table.
		if err = db.exec(ctx, tx, "dropping old table", fmt.Sprintf("DROP TABLE %s", table.name)); err != nil {
			return err
		}

		// Step 7: Rename the new table to the old name.
		if err = db.exec(ctx, tx, "renaming new table",
			fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tempName, table.name)); err != nil {
			return err
		}
	}
	return nil
}

// migrateSchema synchronises triggers or indexes. Changed entities are dropped and recreated.
func (db *Database) migrateSchema(ctx context.Context, tx *sql.Tx, typ schemaType) error {
	diff, err := db.diffSchema(ctx, tx, typ)
	if err != nil {
		return err
	}
	keyword := strings.ToUpper(string(typ))
	for _, name := range diff.deleted {
		if err = db.exec(ctx, tx, "dropping "+string(typ), fmt.Sprintf("DROP %s %s", keyword, name)); err != nil {
			return err
		}
	}
	for _, createSQL := range diff.created {
		if err = db.exec(ctx, tx, "creating "+string(typ), createSQL); err != nil {
			return err
		}
	}
	for _, changed := range diff.changed {
		if err = db.exec(ctx, tx, "dropping changed "+string(typ),
			fmt.Sprintf("DROP %s %s", keyword, changed.name)); err != nil {
			return err
		}
		if err = db.exec(ctx, tx, "recreating changed "+string(typ), changed.newSQL); err != nil {
			return err
		}
	}
	return nil
}

// diffSchema compares live sqlite_schema entries of typ against schemaTarget.
func (db *Database) diffSchema(ctx context.Context, tx *sql.Tx, typ schemaType) (schemaDiff, error) {
	var (
		diff schemaDiff
		err  error
	)
	if diff.deleted, err = queryRows(ctx, tx, scanString, `SELECT live.name
FROM sqlite_schema AS live
         LEFT JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = ?
  AND target.type IS NULL
  AND live.name NOT LIKE 'sqlite_%'`, typ); err != nil {
		return diff, fmt.Errorf("query deleted %s: %w", typ, err)
	}
	if diff.created, err = queryRows(ctx, tx, scanString, `SELECT target.sql
FROM schemaTarget.sqlite_schema AS target
         LEFT JOIN sqlite_schema AS live ON live.name = target.name AND live.type = target.type
WHERE target.type = ?
  AND live.type IS NULL
  AND target.name NOT LIKE 'sqlite_%'`, typ); err != nil {
		return diff, fmt.Errorf("query created %s: %w", typ, err)
	}
	// Renaming a table adds double quotes around its name, so they are ignored in the comparison.
	if diff.changed, err = queryRows(ctx, tx, func(rows *sql.Rows) (changedSchema, error) {
		var c changedSchema
		err := rows.Scan(&c.name, &c.liveSQL, &c.newSQL)
		return c, err //nolint:wrapcheck // wrapped by queryRows.
	}, `SELECT live.name, live.sql, target.sql
FROM sqlite_schema AS live
         JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = ?
  AND live.name NOT LIKE 'sqlite_%'
  AND REPLACE(live.sql, '"', '') <> REPLACE(target.sql, '"', '')`, typ); err != nil {
		return diff, fmt.Errorf("query changed %s: %w", typ, err)
	}
	return diff, nil
}

func (db *Database) exec(ctx context.Context, tx *sql.Tx, msg string, query string) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, msg, slog.String("query", query))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanString(rows *sql.Rows) (string, error) {
	var s string
	err := rows.Scan(&s)
	return s, err //nolint:wrapcheck // wrapped by queryRows.
}

// queryRows runs query and maps every row with scan.
func queryRows[T any](
	ctx context.Context,
	q queryer,
	scan func(*sql.Rows) (T, error),
	query string,
	args ...any,
) (_ []T, err error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()
	var results []T
	for rows.Next() {
		var v T
		if v, err = scan(rows); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		results = append(results, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}
