package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// migrateTo makes the live schema match schemaDefinition declaratively.
//
// The target schema is created in an attached in-memory database and diffed against the live one. Dropped
// tables are dropped, new tables created and changed tables rebuilt with the 12-step procedure from
// https://www.sqlite.org/lang_altertable.html#otheralter. Indexes and triggers are synchronised afterwards.
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	start := time.Now()

	detach, err := db.attachSchemaTarget(ctx, schemaDefinition)
	if err != nil {
		return fmt.Errorf("attach schema target: %w", err)
	}
	defer detach()

	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign keys: %w", err)
	}
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, fmt.Errorf("re-enable foreign keys: %w", fkErr))
		}
	}()

	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer db.rollback(ctx, tx)

	if err = db.migrateTables(ctx, tx); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	for _, typ := range []string{"trigger", "index"} {
		if err = db.migrateEntities(ctx, tx, typ); err != nil {
			return fmt.Errorf("migrate %ss: %w", typ, err)
		}
	}
	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

func (db *Database) attachSchemaTarget(ctx context.Context, schemaDefinition string) (func(), error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	target, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	// The shared cache keeps the database alive while the live connection has it attached.
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target",
				slog.Any("error", closeErr))
		}
	}()
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, fmt.Errorf("create target schema: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", dsn); err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach schema target",
				slog.Any("error", detachErr))
		}
	}, nil
}

func (db *Database) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", slog.Any("error", err))
	}
}

const (
	// Internal and replication tables are never touched.
	ownedByUs = `AND %[1]s.name NOT LIKE 'sqlite_%%' AND %[1]s.name NOT LIKE '_litestream_%%'`

	deletedQuery = `SELECT live.name FROM sqlite_schema AS live
LEFT JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = ? AND target.type IS NULL `

	createdQuery = `SELECT target.sql FROM sqlite_schema AS live
RIGHT JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE target.type = ? AND live.type IS NULL `

	// A renamed table gets its name quoted in sqlite_schema, so quotes are ignored in the diff.
	changedQuery = `SELECT live.name, live.sql, target.sql FROM sqlite_schema AS live
JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = ? AND REPLACE(live.sql, '"', '') <> REPLACE(target.sql, '"', '') `
)

type changedEntity struct {
	name    string
	liveSQL string
	newSQL  string
}

func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	deleted, err := queryRows(ctx, tx, deletedQuery+fmt.Sprintf(ownedByUs, "live"), scanString, "table")
	if err != nil {
		return fmt.Errorf("query deleted tables: %w", err)
	}
	for _, table := range deleted {
		if err = db.exec(ctx, tx, "dropping table", fmt.Sprintf("DROP TABLE %s", table)); err != nil {
			return err
		}
	}

	created, err := queryRows(ctx, tx, createdQuery+fmt.Sprintf(ownedByUs, "target"), scanString, "table")
	if err != nil {
		return fmt.Errorf("query new tables: %w", err)
	}
	for _, query := range created {
		if err = db.exec(ctx, tx, "creating table", query); err != nil {
			return err
		}
	}

	changed, err := queryRows(ctx, tx, changedQuery+fmt.Sprintf(ownedByUs, "live"), scanChanged, "table")
	if err != nil {
		return fmt.Errorf("query changed tables: %w", err)
	}
	for _, table := range changed {
		if err = db.rebuildTable(ctx, tx, table); err != nil {
			return fmt.Errorf("rebuild %s: %w", table.name, err)
		}
	}
	return nil
}

// rebuildTable copies the columns the live and target definitions share into a freshly created table.
func (db *Database) rebuildTable(ctx context.Context, tx *sql.Tx, table changedEntity) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table", slog.String("table", table.name),
		slog.String("live_sql", table.liveSQL), slog.String("new_sql", table.newSQL))

	temp := table.name + "_migration_temp"
	if err := db.exec(ctx, tx, "creating temporary table",
		strings.Replace(table.newSQL, table.name, temp, 1)); err != nil {
		return err
	}

	// Quoted so that columns named after keywords survive.
	columns, err := queryRows(ctx, tx, `SELECT '"' || target.name || '"'
FROM PRAGMA_TABLE_INFO(:table_name) AS live
JOIN PRAGMA_TABLE_INFO(:table_name, 'schemaTarget') AS target ON target.name = live.name`,
		scanString, sql.Named("table_name", table.name))
	if err != nil {
		return fmt.Errorf("query common columns: %w", err)
	}
	common := strings.Join(columns, ", ")

	for _, step := range []struct{ msg, query string }{
		{"copying data", fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", temp, common, common, table.name)},
		{"dropping old table", fmt.Sprintf("DROP TABLE %s", table.name)},
		{"renaming new table", fmt.Sprintf("ALTER TABLE %s RENAME TO %s", temp, table.name)},
	} {
		if err = db.exec(ctx, tx, step.msg, step.query); err != nil {
			return err
		}
	}
	return nil
}

// migrateEntities synchronises indexes or triggers, recreating the ones whose definition changed.
func (db *Database) migrateEntities(ctx context.Context, tx *sql.Tx, typ string) error {
	keyword := strings.ToUpper(typ)
	deleted, err := queryRows(ctx, tx, deletedQuery+"AND live.name NOT LIKE 'sqlite_%'", scanString, typ)
	if err != nil {
		return fmt.Errorf("query deleted: %w", err)
	}
	for _, name := range deleted {
		if err = db.exec(ctx, tx, "dropping "+typ, fmt.Sprintf("DROP %s %s", keyword, name)); err != nil {
			return err
		}
	}

	created, err := queryRows(ctx, tx, createdQuery+"AND target.name NOT LIKE 'sqlite_%'", scanString, typ)
	if err != nil {
		return fmt.Errorf("query created: %w", err)
	}
	for _, query := range created {
		if err = db.exec(ctx, tx, "creating "+typ, query); err != nil {
			return err
		}
	}

	changed, err := queryRows(ctx, tx, changedQuery+"AND live.name NOT LIKE 'sqlite_%'", scanChanged, typ)
	if err != nil {
		return fmt.Errorf("query changed: %w", err)
	}
	for _, c := range changed {
		if err = db.exec(ctx, tx, "dropping changed "+typ, fmt.Sprintf("DROP %s %s", keyword, c.name)); err != nil {
			return err
		}
		if err = db.exec(ctx, tx, "recreating changed "+typ, c.newSQL); err != nil {
			return err
		}
	}
	return nil
}

func (db *Database) exec(ctx context.Context, tx *sql.Tx, msg, query string) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, msg, slog.String("query", query))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanString(row scanner) (string, error) {
	var s string
	err := row.Scan(&s)
	return s, err //nolint:wrapcheck // wrapped by queryRows.
}

func scanChanged(row scanner) (changedEntity, error) {
	var c changedEntity
	err := row.Scan(&c.name, &c.liveSQL, &c.newSQL)
	return c, err //nolint:wrapcheck // wrapped by queryRows.
}

func queryRows[T any](
	ctx context.Context,
	tx *sql.Tx,
	query string,
	scan func(scanner) (T, error),
	args ...any,
) (_ []T, err error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()
	var results []T
	for rows.Next() {
		var result T
		if result, err = scan(rows); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		results = append(results, result)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return results, nil
}
