package workout

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/myrjola/fitroadmap/internal/coach"
	"github.com/myrjola/fitroadmap/internal/contexthelpers"
	"github.com/myrjola/fitroadmap/internal/errors"
	"github.com/myrjola/fitroadmap/internal/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// recordRepository stores one JSON document per user, or per user and key when keyColumn is set. Reads and
// writes always replace the whole document.
type recordRepository[T any] struct {
	read      querier
	write     querier
	table     string
	keyColumn string
}

func newRecordRepository[T any](db *sqlite.Database, table, keyColumn string) recordRepository[T] {
	return recordRepository[T]{
		read:      db.ReadOnly,
		write:     db.ReadWrite,
		table:     table,
		keyColumn: keyColumn,
	}
}

// in returns a copy that reads and writes through tx.
func (r recordRepository[T]) in(tx *sql.Tx) recordRepository[T] {
	r.read = tx
	r.write = tx
	return r
}

func userKey(ctx context.Context) (string, error) {
	key := contexthelpers.UserKey(ctx)
	if key == "" {
		return "", ErrUnidentified
	}
	return key, nil
}

func (r recordRepository[T]) where() (string, func(user, key string) []any) {
	if r.keyColumn == "" {
		return "user_key = ?", func(user, _ string) []any { return []any{user} }
	}
	return fmt.Sprintf("user_key = ? AND %s = ?", r.keyColumn),
		func(user, key string) []any { return []any{user, key} }
}

func (r recordRepository[T]) decode(data string, key string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return v, fmt.Errorf("%w: %s %s: %w", ErrCorruptState, r.table, key, err)
	}
	return v, nil
}

// Get returns the record stored under key, which is ignored for per-user tables.
func (r recordRepository[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	user, err := userKey(ctx)
	if err != nil {
		return zero, err
	}
	cond, args := r.where()
	var data string
	//nolint:gosec // table and column names are constants.
	err = r.read.QueryRowContext(ctx, fmt.Sprintf("SELECT data FROM %s WHERE %s", r.table, cond),
		args(user, key)...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("query %s: %w", r.table, err)
	}
	return r.decode(data, key)
}

// Put replaces the record stored under key.
func (r recordRepository[T]) Put(ctx context.Context, key string, v T) error {
	user, err := userKey(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", r.table, err)
	}
	columns, placeholders, conflict := "user_key, data", "?, ?", "user_key"
	args := []any{user, string(data)}
	if r.keyColumn != "" {
		columns += ", " + r.keyColumn
		placeholders += ", ?"
		conflict += ", " + r.keyColumn
		args = append(args, key)
	}
	//nolint:gosec // table and column names are constants.
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
		ON CONFLICT (%s) DO UPDATE SET
			data = excluded.data,
			updated_at = STRFTIME('%%Y-%%m-%%dT%%H:%%M:%%fZ')`, r.table, columns, placeholders, conflict)
	if _, err = r.write.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", r.table, err)
	}
	return nil
}

// List returns every record of the user ordered by key.
func (r recordRepository[T]) List(ctx context.Context) (_ []T, err error) {
	user, err := userKey(ctx)
	if err != nil {
		return nil, err
	}
	orderBy := "user_key"
	if r.keyColumn != "" {
		orderBy = r.keyColumn
	}
	//nolint:gosec // table and column names are constants.
	rows, err := r.read.QueryContext(ctx,
		fmt.Sprintf("SELECT %s, data FROM %s WHERE user_key = ? ORDER BY %s", orderBy, r.table, orderBy), user)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var records []T
	for rows.Next() {
		var key, data string
		if err = rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		var v T
		if v, err = r.decode(data, key); err != nil {
			return nil, err
		}
		records = append(records, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}

// repository groups the record stores of a user.
type repository struct {
	db           *sqlite.Database
	logger       *slog.Logger
	profiles     recordRepository[coach.Profile]
	logs         recordRepository[coach.DailyLog]
	weekPlans    recordRepository[coach.WeekPlan]
	gamification recordRepository[coach.Gamification]
}

func newRepository(db *sqlite.Database, logger *slog.Logger) *repository {
	return &repository{
		db:           db,
		logger:       logger,
		profiles:     newRecordRepository[coach.Profile](db, "profiles", ""),
		logs:         newRecordRepository[coach.DailyLog](db, "daily_logs", "log_date"),
		weekPlans:    newRecordRepository[coach.WeekPlan](db, "week_plans", "week_start"),
		gamification: newRecordRepository[coach.Gamification](db, "gamification", ""),
	}
}

// transaction runs fn with stores bound to a single write transaction that commits when fn succeeds.
func (r *repository) transaction(ctx context.Context, fn func(tx *repository) error) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
				slog.Any("error", rollbackErr))
		}
	}()

	bound := &repository{
		db:           r.db,
		logger:       r.logger,
		profiles:     r.profiles.in(tx),
		logs:         r.logs.in(tx),
		weekPlans:    r.weekPlans.in(tx),
		gamification: r.gamification.in(tx),
	}
	if err = fn(bound); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
