package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	userKeyColumn  = "user_key"
	exportFileName = "fitroadmap-export.sqlite3"
)

// ExportUserData copies every row keyed by userKey into a new SQLite database file under basePath and returns the
// path of the file. The export keeps the table definitions so the file can be opened with any SQLite client.
func (db *Database) ExportUserData(ctx context.Context, userKey string, basePath string) (_ string, err error) {
	if userKey == "" {
		return "", errors.New("empty user key")
	}
	exportPath := filepath.Join(basePath, exportFileName)
	exportDsn := fmt.Sprintf("file:%s?mode=rwc", exportPath)

	conn, err := db.ReadOnly.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("get db connection: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close db connection: %w", closeErr)
		}
	}()

	// The read pool is query only, attaching and filling the export needs writes.
	if _, err = conn.ExecContext(ctx, `PRAGMA QUERY_ONLY = FALSE`); err != nil {
		return "", fmt.Errorf("disable read only mode: %w", err)
	}
	defer func() {
		if _, pragmaErr := conn.ExecContext(ctx, `PRAGMA QUERY_ONLY = TRUE`); pragmaErr != nil && err == nil {
			err = fmt.Errorf("enable read only mode: %w", pragmaErr)
		}
	}()

	if _, err = conn.ExecContext(ctx, `ATTACH DATABASE ? AS export`, exportDsn); err != nil {
		return "", fmt.Errorf("create export database: %w", err)
	}
	defer func() {
		if _, detachErr := conn.ExecContext(ctx, `DETACH DATABASE export`); detachErr != nil && err == nil {
			err = fmt.Errorf("detach export database: %w", detachErr)
		}
	}()

	if err = executeExport(ctx, conn, userKey); err != nil {
		return "", err
	}
	return exportPath, nil
}

func executeExport(ctx context.Context, conn *sql.Conn, userKey string) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	tables, err := userTables(ctx, tx)
	if err != nil {
		return fmt.Errorf("find user tables: %w", err)
	}
	if len(tables) == 0 {
		return errors.New("no table has a user_key column")
	}

	for _, table := range tables {
		if err = copyTableSchema(ctx, tx, table); err != nil {
			return fmt.Errorf("copy schema for table %s: %w", table, err)
		}
		//nolint:gosec // table names come from sqlite_schema.
		query := "INSERT INTO export." + table + " SELECT * FROM main." + table + " WHERE " + userKeyColumn + " = ?"
		if _, err = tx.ExecContext(ctx, query, userKey); err != nil {
			return fmt.Errorf("copy data for table %s: %w", table, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit export database: %w", err)
	}
	committed = true
	return nil
}

// userTables lists the tables that carry a user_key column. Sessions are keyed by token and stay out of the export.
func userTables(ctx context.Context, tx *sql.Tx) (_ []string, err error) {
	rows, err := tx.QueryContext(ctx, `SELECT s.name
FROM main.sqlite_schema s
WHERE s.type = 'table'
  AND EXISTS (SELECT 1 FROM pragma_table_info(s.name) c WHERE c.name = ?)
ORDER BY s.name`, userKeyColumn)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var tables []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over tables: %w", err)
	}
	return tables, nil
}

func copyTableSchema(ctx context.Context, tx *sql.Tx, table string) error {
	var createSQL string
	if err := tx.QueryRowContext(ctx, `SELECT sql FROM main.sqlite_schema WHERE type = 'table' AND name = ?`,
		table).Scan(&createSQL); err != nil {
		return fmt.Errorf("get schema: %w", err)
	}
	prefix := "CREATE TABLE " + table
	if !strings.HasPrefix(createSQL, prefix) {
		return fmt.Errorf("unexpected schema %q", createSQL)
	}
	exportSQL := "CREATE TABLE export." + table + createSQL[len(prefix):]
	if _, err := tx.ExecContext(ctx, exportSQL); err != nil {
		return fmt.Errorf("create table in export db: %w", err)
	}
	return nil
}
