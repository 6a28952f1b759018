package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	_ "modernc.org/sqlite"

	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

// DefaultDatabase is the database file name inside the data directory.
const DefaultDatabase = "studyflow.db"

// SQLiteRepository implements study.Store on a single SQLite file.
type SQLiteRepository struct {
	db          *sql.DB
	path        string
	retryConfig retry.Config
	now         func() time.Time
}

var _ study.Store = (*SQLiteRepository)(nil)

// Open opens (creating if needed) the database at path and applies pending
// migrations. A locked database is retried a few times before giving up.
func Open(ctx context.Context, path string) (*SQLiteRepository, error) {
	// G301: Use 0700 for directories
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	r := &SQLiteRepository{
		path: path,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  50 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		now: time.Now,
	}

	retryer := retry.New[*sql.DB](r.retryConfig)
	db, err := retryer.Do(ctx, func(ctx context.Context) (*sql.DB, error) {
		db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// One connection serializes writers; SQLite allows a single writer anyway.
		db.SetMaxOpenConns(1)
		if err := migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	r.db = db
	return r, nil
}

// Path returns the database file location.
func (r *SQLiteRepository) Path() string {
	return r.path
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// SetClock replaces the time source used for CreatedAt stamps.
func (r *SQLiteRepository) SetClock(now func() time.Time) {
	r.now = now
}

func (r *SQLiteRepository) stamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Timestamps are stored as Unix milliseconds and days as YYYY-MM-DD text.

func millis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func dayText(t time.Time) string {
	return study.Day(t).Format(study.DateLayout)
}

func parseDayText(s string) (time.Time, error) {
	t, err := study.ParseDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt date %q: %w", s, err)
	}
	return t, nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}
