package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

const usersTableName = "users"

var errNoUsersTable = errors.New("users table does not exist")

// ExportUser copies everything owned by userID into a standalone SQLite file under basePath and returns its path.
//
// A table is owned by a user when it has a user_id column. The users table itself is filtered by id. Tables without
// an owner, such as the HTTP session store, are left out.
func (db *Database) ExportUser(ctx context.Context, userID int, basePath string) (_ string, err error) {
	exportPath := filepath.Join(basePath, fmt.Sprintf("user-db-%d.sqlite3", userID))

	// ATTACH and the pragmas are connection scoped. The read pool cannot be used because an attachment may not
	// widen the access mode of a read-only connection.
	conn, err := db.ReadWrite.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("get db connection: %w", err)
	}
	defer func() {
		err = errors.Join(err, conn.Close())
	}()

	if err = setForeignKeys(ctx, conn, false); err != nil {
		return "", err
	}
	defer func() {
		err = errors.Join(err, setForeignKeys(context.WithoutCancel(ctx), conn, true))
	}()

	if _, err = conn.ExecContext(ctx, `ATTACH DATABASE ? AS export`, "file:"+exportPath+"?mode=rwc"); err != nil {
		return "", fmt.Errorf("attach export database: %w", err)
	}
	defer func() {
		if _, detachErr := conn.ExecContext(context.WithoutCancel(ctx), "DETACH DATABASE export"); detachErr != nil {
			err = errors.Join(err, fmt.Errorf("detach export database: %w", detachErr))
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer db.rollback(ctx, tx)

	tables, err := queryRows(ctx, tx, func(rows *sql.Rows) (ownedTable, error) {
		var t ownedTable
		err := rows.Scan(&t.name, &t.createSQL, &t.ownerColumn)
		return t, err //nolint:wrapcheck // wrapped by queryRows.
	}, `SELECT s.name,
       s.sql,
       CASE WHEN s.name = :users THEN 'id' ELSE 'user_id' END
FROM sqlite_schema AS s
WHERE s.type = 'table'
  AND s.name NOT LIKE 'sqlite_%'
  AND (s.name = :users OR EXISTS (SELECT 1 FROM pragma_table_info(s.name) AS c WHERE c.name = 'user_id'))
ORDER BY s.name = :users DESC, s.name`, sql.Named("users", usersTableName))
	if err != nil {
		return "", fmt.Errorf("query owned tables: %w", err)
	}
	if len(tables) == 0 || tables[0].name != usersTableName {
		return "", errNoUsersTable
	}

	for _, t := range tables {
		if err = t.copyTo(ctx, tx, userID); err != nil {
			return "", fmt.Errorf("copy table %s: %w", t.name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit export: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "exported user database",
		slog.Int("user_id", userID), slog.String("path", exportPath), slog.Int("tables", len(tables)))
	return exportPath, nil
}

type ownedTable struct {
	name        string
	createSQL   string
	ownerColumn string
}

func (t ownedTable) copyTo(ctx context.Context, tx *sql.Tx, userID int) error {
	// The column definitions start at the first parenthesis regardless of how the table name was quoted.
	definitionStart := strings.Index(t.createSQL, "(")
	if definitionStart < 0 {
		return fmt.Errorf("unexpected table definition %q", t.createSQL)
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("CREATE TABLE export.%s %s", t.name, t.createSQL[definitionStart:])); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	query := fmt.Sprintf( //nolint:gosec // identifiers come from sqlite_schema.
		"INSERT INTO export.%s SELECT * FROM main.%s WHERE %s = ?", t.name, t.name, t.ownerColumn)
	if _, err := tx.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}
	return nil
}

// setForeignKeys toggles foreign key enforcement so that the attached database can be filled in any table order.
func setForeignKeys(ctx context.Context, conn *sql.Conn, enabled bool) error {
	mode := "OFF"
	if enabled {
		mode = "ON"
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = "+mode); err != nil {
		return fmt.Errorf("set foreign_keys %s: %w", mode, err)
	}
	return nil
}
